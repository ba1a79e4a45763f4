// Package weave builds the function call sequences of a document.
//
// Functions form a forest: a function is either anchored at a hook
// marker (a root) or at the name of another function it is called after.
package weave

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/tamasfe/mosaic/pkg/common"
	"github.com/tamasfe/mosaic/pkg/module"
	"github.com/tamasfe/mosaic/pkg/splice"
)

// Node is a function placed in a call sequence.
type Node struct {
	Function module.Function
	Module   *module.Module

	// Dynamic are the enablers of the module checked at runtime,
	// the call and its children are guarded by them.
	Dynamic []module.Enabler

	Children []*Node
}

type candidate struct {
	function module.Function
	module   *module.Module
	dynamic  []module.Enabler
	id       int
}

// Weaver places the functions of the active modules.
type Weaver struct {
	dialect *common.Dialect
	logger  *zap.Logger

	candidates []candidate
	emitted    []module.Function
	placed     map[int]bool
}

// New returns a weaver for the functions of the given active modules.
func New(entries []splice.Entry, dialect *common.Dialect, logger *zap.Logger) *Weaver {
	if dialect == nil {
		dialect = common.DefaultDialect()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &Weaver{
		dialect: dialect,
		logger:  logger,
		placed:  make(map[int]bool),
	}

	for _, e := range entries {
		if e.Module == nil {
			continue
		}
		for _, fn := range e.Module.Functions {
			w.candidates = append(w.candidates, candidate{
				function: fn,
				module:   e.Module,
				dynamic:  e.Dynamic,
				id:       len(w.candidates),
			})
		}
	}

	return w
}

// Build returns the call tree anchored at anchor without placing it
// in any document.
func (w *Weaver) Build(anchor string) []*Node {
	return w.build(anchor, make(map[int]bool))
}

func (w *Weaver) build(anchor string, visited map[int]bool) []*Node {
	var matching []candidate
	for _, c := range w.candidates {
		if c.function.AppendAfter == anchor && !visited[c.id] {
			matching = append(matching, c)
		}
	}

	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].function.Queue < matching[j].function.Queue
	})

	nodes := make([]*Node, 0, len(matching))
	for _, c := range matching {
		if visited[c.id] {
			continue
		}
		visited[c.id] = true

		n := &Node{
			Function: c.function,
			Module:   c.module,
			Dynamic:  c.dynamic,
		}
		if strings.TrimSpace(c.function.Name) != "" {
			n.Children = w.build(c.function.Name, visited)
		}
		nodes = append(nodes, n)
	}

	return nodes
}

// Weave inserts a call sequence before every hook marker of the buffer
// that has functions anchored to it.
//
// A function is placed only once per document, under the first
// marker in document order that reaches it.
func (w *Weaver) Weave(buffer *splice.Buffer) {
	for _, marker := range buffer.Markers() {
		if marker.Kind != splice.Global {
			continue
		}

		nodes := w.build(marker.Text, w.placed)
		if len(nodes) == 0 {
			continue
		}

		var b strings.Builder
		w.render(&b, nodes)

		n := buffer.InsertBefore(marker.Text, b.String())
		w.logger.Debug("wove call sequence",
			zap.String("anchor", marker.Text),
			zap.Int("roots", len(nodes)),
			zap.Int("insertions", n),
		)
	}
}

func (w *Weaver) render(b *strings.Builder, nodes []*Node) {
	for _, n := range nodes {
		w.emitted = append(w.emitted, n.Function)

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf(w.dialect.Call, n.Function.Name))
		sb.WriteString("\n")
		w.render(&sb, n.Children)

		if len(n.Dynamic) > 0 {
			b.WriteString(w.dialect.Guard(splice.Condition(w.dialect, n.Dynamic), sb.String()))
		} else {
			b.WriteString(sb.String())
		}
	}
}

// Emitted returns the placed functions in call order.
func (w *Weaver) Emitted() []module.Function {
	return w.emitted
}

// Tree renders the call trees of every hook marker in text,
// for displaying them.
func (w *Weaver) Tree(text string) string {
	var b strings.Builder
	visited := make(map[int]bool)

	for _, marker := range splice.Keywords(text) {
		nodes := w.build(marker, visited)
		if len(nodes) == 0 {
			continue
		}
		b.WriteString(marker + "\n")
		writeTree(&b, nodes, 1)
	}

	return b.String()
}

func writeTree(b *strings.Builder, nodes []*Node, depth int) {
	for _, n := range nodes {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(n.Function.Name)
		if n.Module != nil {
			b.WriteString(" (" + n.Module.Label() + ")")
		}
		b.WriteString("\n")
		writeTree(b, n.Children, depth+1)
	}
}
