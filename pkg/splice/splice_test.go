package splice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tamasfe/mosaic/pkg/common"
	"github.com/tamasfe/mosaic/pkg/module"
)

func TestParse(t *testing.T) {
	segs := Parse("a #K#CODE b\n#KI#INNER\n#K# #KX#")
	require.Len(t, segs, 5)

	assert.Equal(t, Segment{Kind: Text, Text: "a "}, segs[0])
	assert.Equal(t, Segment{Kind: Global, Text: "#K#CODE"}, segs[1])
	assert.Equal(t, "CODE", segs[1].Name())
	assert.Equal(t, Segment{Kind: Text, Text: " b\n"}, segs[2])
	assert.Equal(t, Segment{Kind: Instance, Text: "#KI#INNER"}, segs[3])
	assert.Equal(t, "INNER", segs[3].Name())
	assert.Equal(t, Segment{Kind: Text, Text: "\n#K# #KX#"}, segs[4])
}

func TestKeywords(t *testing.T) {
	assert.Equal(t,
		[]string{"#K#A", "#KI#B", "#K#C_1"},
		Keywords("#K#A x #KI#B\n#K#A #K#C_1"),
	)
	assert.Empty(t, Keywords("no markers"))
}

func TestBufferInsert(t *testing.T) {
	b := NewBuffer()
	b.Append("start\n#K#A\nmiddle\n#K#A\nend")

	assert.Equal(t, 2, b.Count("#K#A"))
	assert.Equal(t, 2, b.InsertBefore("#K#A", "x #K#B\n"))
	assert.Equal(t, "start\nx #K#B\n#K#A\nmiddle\nx #K#B\n#K#A\nend", b.String())
	assert.Equal(t, 2, b.Count("#K#B"))

	assert.Equal(t, 0, b.InsertBefore("#K#MISSING", "nothing"))
	assert.False(t, b.Contains("#K#MISSING"))
}

func TestBufferInsertDoesNotRecurse(t *testing.T) {
	b := NewBuffer()
	b.Append("#K#A")

	assert.Equal(t, 1, b.InsertBefore("#K#A", "#K#A\n"))
	assert.Equal(t, "#K#A\n#K#A", b.String())
	assert.Equal(t, 2, b.Count("#K#A"))
}

func TestBufferMarkers(t *testing.T) {
	b := NewBuffer()
	b.Append("#K#B #KI#X1 #K#A #K#B")

	markers := b.Markers()
	require.Len(t, markers, 3)
	assert.Equal(t, "#K#B", markers[0].Text)
	assert.Equal(t, Instance, markers[1].Kind)
	assert.Equal(t, "#K#A", markers[2].Text)

	assert.Equal(t, 1, b.RemoveMarkers(Instance))
	assert.Equal(t, "#K#B  #K#A #K#B", b.String())
	assert.False(t, b.Contains("#KI#X1"))
}

func mod(id string, templates ...module.Template) *module.Module {
	return &module.Module{ID: id, Templates: templates}
}

func TestSplicerQueueOrder(t *testing.T) {
	b := NewBuffer()
	b.Append("#K#CODE\n")

	s := NewSplicer(b, nil, zaptest.NewLogger(t))
	s.Splice([]Entry{
		{Module: mod("a",
			module.Template{Body: "a-late", Hooks: []string{"CODE"}, Queue: 200},
			module.Template{Body: "a-first", Hooks: []string{"CODE"}, Queue: 100},
		)},
		{Module: mod("b",
			module.Template{Body: "b-first", Hooks: []string{"CODE"}, Queue: 100},
		)},
	})
	s.Finish()

	assert.Equal(t, "a-first\nb-first\na-late\n#K#CODE\n", b.String())
	assert.Empty(t, s.Diagnostics())
}

func TestSplicerDefaultHook(t *testing.T) {
	b := NewBuffer()
	b.Append(common.Marker(common.DefaultCodeKeyword))

	s := NewSplicer(b, nil, zaptest.NewLogger(t))
	s.Splice([]Entry{{Module: mod("a", module.Template{Body: "body"})}})

	assert.Equal(t, "body\n#K#DEFAULT_CODE", b.String())
}

func TestSplicerSkipsEmptyBody(t *testing.T) {
	b := NewBuffer()
	b.Append("#K#CODE")

	s := NewSplicer(b, nil, zaptest.NewLogger(t))
	m := mod("a", module.Template{Body: "  \n", Hooks: []string{"CODE"}})
	m.Name = "Alpha"
	s.Splice([]Entry{{Module: m}})

	assert.Equal(t, "#K#CODE", b.String())
	require.Len(t, s.Diagnostics(), 1)
	assert.Contains(t, s.Diagnostics()[0], "Alpha")
}

func TestSplicerDynamicGuard(t *testing.T) {
	b := NewBuffer()
	b.Append("#K#CODE")

	dynamic := []module.Enabler{{Property: module.Property{Name: "E"}, Value: 2}}
	m := mod("a",
		module.Template{Body: "runtime", Hooks: []string{"CODE"}},
		module.Template{Body: "static", Hooks: []string{"CODE"}, NeedsVariant: true, Queue: 1},
	)

	s := NewSplicer(b, nil, zaptest.NewLogger(t))
	s.Splice([]Entry{{Module: m, Dynamic: dynamic}})

	assert.Equal(t, "if(E == 2)\n{\nruntime\n}\nstatic\n#K#CODE", b.String())
}

func TestSplicerInstanceHygiene(t *testing.T) {
	b := NewBuffer()
	b.Append("#K#PASS\n#K#PASS\n")

	pass := module.Template{Body: "pass {\n#KI#INNER\n}", Hooks: []string{"PASS"}, Queue: 1}
	inner := module.Template{Body: "inner", Hooks: []string{"INNER"}, Queue: 2}

	s := NewSplicer(b, nil, zaptest.NewLogger(t))
	s.Splice([]Entry{
		{Module: mod("a", pass, inner)},
		{Module: mod("b", module.Template{Body: "other", Hooks: []string{"INNER"}, Queue: 3})},
	})

	// Both copies of the pass share module a's rename and receive its inner
	// template. Module b has no rename for INNER, so it lands nowhere.
	assert.Equal(t, 2, b.Count("#KI#INNER1"))
	assert.Equal(t, "pass {\ninner\n#KI#INNER1\n}\n#K#PASS\npass {\ninner\n#KI#INNER1\n}\n#K#PASS\n", b.String())

	s.Finish()
	assert.Equal(t, "pass {\ninner\n\n}\n#K#PASS\npass {\ninner\n\n}\n#K#PASS\n", b.String())
	assert.NotContains(t, b.String(), common.InstanceSigil)
}

func TestSplicerDistinctRenamesPerModule(t *testing.T) {
	b := NewBuffer()
	b.Append("#K#PASS\n")

	pass := module.Template{Body: "#KI#INNER", Hooks: []string{"PASS"}}

	s := NewSplicer(b, nil, zaptest.NewLogger(t))
	s.Splice([]Entry{
		{Module: mod("a", pass)},
		{Module: mod("b", pass)},
	})

	assert.Equal(t, "#KI#INNER1\n#KI#INNER2\n#K#PASS\n", b.String())
}

func TestCondition(t *testing.T) {
	d := common.DefaultDialect()
	assert.Equal(t, "if(A == 1 && B == 0)", Condition(d, []module.Enabler{
		{Property: module.Property{Name: "A"}, Value: 1},
		{Property: module.Property{Name: "B"}, Value: 0},
	}))
}
