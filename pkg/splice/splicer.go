package splice

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tamasfe/mosaic/pkg/common"
	"github.com/tamasfe/mosaic/pkg/module"
)

// Entry is an active module and the enablers that are checked at runtime.
type Entry struct {
	Module  *module.Module
	Dynamic []module.Enabler
}

type renameKey struct {
	module string
	marker string
}

// Splicer inserts module templates into a buffer.
//
// A splicer belongs to a single document, it keeps the instance marker
// renames made for that document.
type Splicer struct {
	buffer  *Buffer
	dialect *common.Dialect
	logger  *zap.Logger

	renames map[renameKey]string
	used    map[string]bool
	counter int

	diagnostics []string
}

// NewSplicer returns a splicer writing into buffer.
func NewSplicer(buffer *Buffer, dialect *common.Dialect, logger *zap.Logger) *Splicer {
	if dialect == nil {
		dialect = common.DefaultDialect()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Splicer{
		buffer:  buffer,
		dialect: dialect,
		logger:  logger,
		renames: make(map[renameKey]string),
		used:    make(map[string]bool),
	}
}

type queued struct {
	entry    Entry
	template module.Template
	index    int
}

// Splice inserts the templates of the given modules in queue order.
func (s *Splicer) Splice(entries []Entry) {
	var templates []queued
	for _, e := range entries {
		if e.Module == nil {
			continue
		}
		for i, t := range e.Module.Templates {
			templates = append(templates, queued{entry: e, template: t, index: i})
		}
	}

	sort.SliceStable(templates, func(i, j int) bool {
		return templates[i].template.Queue < templates[j].template.Queue
	})

	for _, q := range templates {
		s.splice(q)
	}
}

func (s *Splicer) splice(q queued) {
	m := q.entry.Module
	t := q.template

	if strings.TrimSpace(t.Body) == "" {
		s.diagnose(fmt.Sprintf(`Module "%v": template #%v has no body, skipped.`, m.Label(), q.index))
		return
	}

	body := t.Body
	if len(q.entry.Dynamic) > 0 && !t.NeedsVariant {
		body = s.dialect.Guard(Condition(s.dialect, q.entry.Dynamic), body)
	}
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}

	segs := Parse(body)
	for i := range segs {
		if segs[i].Kind == Instance {
			segs[i].Text = s.rename(m.ID, segs[i].Text)
		}
	}

	hooks := t.Hooks
	if len(hooks) == 0 {
		hooks = []string{common.DefaultCodeKeyword}
	}

	markers := make([]string, 0, len(hooks)*2)
	for _, h := range hooks {
		markers = append(markers, common.Marker(h))
		if renamed, ok := s.renames[renameKey{module: m.ID, marker: common.InstanceMarker(h)}]; ok {
			markers = append(markers, renamed)
		}
	}

	n := s.buffer.InsertSegments(segs, markers...)

	s.logger.Debug("spliced template",
		zap.String("module", m.ID),
		zap.Int("template", q.index),
		zap.Strings("hooks", hooks),
		zap.Int("insertions", n),
	)
}

// rename returns the instance marker name used for a module, creating it
// on first use.
func (s *Splicer) rename(moduleID, marker string) string {
	key := renameKey{module: moduleID, marker: marker}
	if renamed, ok := s.renames[key]; ok {
		return renamed
	}

	var renamed string
	for {
		s.counter++
		renamed = marker + strconv.Itoa(s.counter)
		if !s.used[renamed] && !s.buffer.Contains(renamed) {
			break
		}
	}

	s.renames[key] = renamed
	s.used[renamed] = true
	return renamed
}

// Finish removes the instance markers nothing was inserted at.
func (s *Splicer) Finish() {
	n := s.buffer.RemoveMarkers(Instance)
	s.logger.Debug("removed instance markers", zap.Int("count", n))
}

// Diagnostics returns the problems found while splicing.
func (s *Splicer) Diagnostics() []string {
	return s.diagnostics
}

func (s *Splicer) diagnose(msg string) {
	s.diagnostics = append(s.diagnostics, msg)
	s.logger.Warn(msg)
}

// Condition renders the runtime check of the given enablers.
func Condition(d *common.Dialect, enablers []module.Enabler) string {
	names := make([]string, 0, len(enablers))
	values := make([]int, 0, len(enablers))
	for _, e := range enablers {
		names = append(names, e.Name)
		values = append(values, e.Value)
	}
	return d.ConditionLine(names, values)
}
