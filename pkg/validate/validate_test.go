package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamasfe/mosaic/pkg/common"
	"github.com/tamasfe/mosaic/pkg/module"
)

func kinds(issues []Issue) []Kind {
	k := make([]Kind, 0, len(issues))
	for _, i := range issues {
		k = append(k, i.Kind)
	}
	return k
}

func TestAuditClean(t *testing.T) {
	modules := []*module.Module{
		{ID: "base"},
		{ID: "lighting", Dependencies: []string{"base"}},
	}

	assert.Empty(t, Audit(modules))

	_, found := Verdict(modules)
	assert.False(t, found)
}

func TestAuditDuplicate(t *testing.T) {
	modules := []*module.Module{
		{ID: "a", Name: "First"},
		{ID: "a", Name: "Second"},
	}

	issues := Audit(modules)
	assert.Equal(t, []Kind{KindDuplicate, KindDuplicate}, kinds(issues))
	assert.Contains(t, issues[0].String(), "First")

	issue, found := Verdict(modules)
	require.True(t, found)
	assert.Equal(t, KindDuplicate, issue.Kind)
	assert.Equal(t, "Second", issue.ModuleName)
	assert.Equal(t, "First", issue.OtherName)
}

func TestAuditMissingDependency(t *testing.T) {
	modules := []*module.Module{
		{ID: "a", Dependencies: []string{"b", "c"}},
		{ID: "b"},
	}

	issues := Audit(modules)
	require.Len(t, issues, 1)
	assert.Equal(t, KindMissingDependency, issues[0].Kind)
	assert.Equal(t, "c", issues[0].Detail)
	assert.Equal(t, `Module "a" has missing dependency id "c".`, issues[0].String())

	// The input must not be touched.
	assert.Equal(t, []string{"b", "c"}, modules[0].Dependencies)
}

func TestAuditIncompatible(t *testing.T) {
	modules := []*module.Module{
		{ID: "a", Name: "Alpha", IncompatibleWith: []string{"b"}},
		{ID: "b", Name: "Beta"},
	}

	issues := Audit(modules)
	require.Len(t, issues, 1)
	assert.Equal(t, KindIncompatible, issues[0].Kind)
	assert.Equal(t, "b", issues[0].ModuleID)
	assert.Equal(t, "a", issues[0].OtherID)
	assert.Equal(t, `Module "Alpha" is incompatible with module "Beta".`, issues[0].String())

	issue, found := Verdict(modules)
	require.True(t, found)
	assert.Equal(t, KindIncompatible, issue.Kind)
}

func TestAuditCollectsEverything(t *testing.T) {
	modules := []*module.Module{
		{ID: "a", Dependencies: []string{"x"}},
		{ID: "a", IncompatibleWith: []string{"b"}},
		{ID: "b", Dependencies: []string{"y"}},
		nil,
	}

	issues := Audit(modules)
	assert.ElementsMatch(t, []Kind{
		KindDuplicate, KindDuplicate,
		KindMissingDependency, KindMissingDependency,
		KindIncompatible,
	}, kinds(issues))
}

func TestMissingProperties(t *testing.T) {
	p := &module.Project{
		UseTemplatesForProperties: true,
		PropertiesTemplate:        `_Color("Color", Color) = (1,1,1,1)`,
		Properties:                []module.Property{{Name: "_Color"}, {Name: "_Glossiness"}},
		Modules: []*module.Module{
			{
				ID:         "rim",
				Name:       "Rim",
				Properties: []module.Property{{Name: "_RimColor"}, {Name: "_RimPower"}},
				Enablers:   []module.Enabler{{Property: module.Property{Name: "_EnableRim"}, Value: 1}},
				Templates: []module.Template{{
					Body:  `_RimPower("Rim power", Float) = 1`,
					Hooks: []string{common.TemplatePropertiesKeyword},
				}},
			},
		},
	}

	issues := MissingProperties(p, SeverityWarning)
	details := make([]string, 0, len(issues))
	for _, i := range issues {
		details = append(details, i.Detail)
		assert.Equal(t, SeverityWarning, i.Severity)
	}
	assert.Equal(t, []string{"_Glossiness", "_RimColor", "_EnableRim"}, details)
	assert.Equal(t, `Property "_RimColor" of module "Rim" is missing from the properties template.`, issues[1].String())
	assert.Empty(t, Blocking(issues))

	issues = MissingProperties(p, SeverityError)
	assert.Len(t, Blocking(issues), 3)

	p.UseTemplatesForProperties = false
	assert.Empty(t, MissingProperties(p, SeverityError))
}

func TestMissingPropertiesWholeNames(t *testing.T) {
	p := &module.Project{
		UseTemplatesForProperties: true,
		PropertiesTemplate:        "[HDR] _ColorTint (\"Tint\", Color) = (1,1,1,1)\n// toggles: _Enabled\n_Scale(\"Scale\", Float) = 1",
		Properties:                []module.Property{{Name: "_Color"}, {Name: "_ColorTint"}, {Name: "_Scale"}},
		Modules: []*module.Module{
			{
				ID:       "toggle",
				Enablers: []module.Enabler{{Property: module.Property{Name: "_E"}, Value: 1}},
			},
		},
	}

	issues := MissingProperties(p, SeverityError)
	assert.Equal(t, []string{`Property "_Color" is missing from the properties template.`, `Property "_E" of module "toggle" is missing from the properties template.`}, Strings(issues))
	assert.Len(t, Blocking(issues), 2)
}

func TestParseSeverity(t *testing.T) {
	s, err := ParseSeverity("Warning")
	require.NoError(t, err)
	assert.Equal(t, SeverityWarning, s)

	s, err = ParseSeverity("")
	require.NoError(t, err)
	assert.Equal(t, SeverityError, s)

	_, err = ParseSeverity("fatal")
	assert.Error(t, err)
}
