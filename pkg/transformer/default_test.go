package transformer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamasfe/mosaic/pkg/module"
)

func testProject() *module.Project {
	return &module.Project{
		Name:       " Toon ",
		Properties: []module.Property{{Name: " _MainTex ", Type: "2D"}},
		Modules: []*module.Module{
			{
				ID:           " outline ",
				Name:         "Outline",
				Dependencies: []string{" base "},
				Enablers:     []module.Enabler{{Property: module.Property{Name: "_OutlineOn"}, Value: 1}},
				Properties: []module.Property{
					{Name: "_OutlineWidth", DisplayName: "Width"},
					{Name: "_OutlineColor"},
				},
				Templates: []module.Template{
					{Body: "x", Hooks: []string{" FRAG ", "", "OLD"}},
					{Body: "y", Hooks: []string{" "}},
				},
				Functions: []module.Function{
					{Name: " Outline ", AppendAfter: "#K#OLD", CodeHooks: []string{"OLD"}},
				},
			},
		},
	}
}

func TestDefaultTransform(t *testing.T) {
	p := testProject()

	err := (&Default{}).Transform(context.Background(), map[string]interface{}{
		"hookAliases": map[string]string{"OLD": "NEW"},
	}, p)
	require.NoError(t, err)

	assert.Equal(t, "Toon", p.Name)
	assert.Equal(t, "_MainTex", p.Properties[0].Name)
	assert.Equal(t, "Main Tex", p.Properties[0].DisplayName)

	m := p.Modules[0]
	assert.Equal(t, "outline", m.ID)
	assert.Equal(t, []string{"base"}, m.Dependencies)
	assert.Equal(t, "Outline On", m.Enablers[0].DisplayName)
	assert.Equal(t, "Width", m.Properties[0].DisplayName)
	assert.Equal(t, "Outline Color", m.Properties[1].DisplayName)

	assert.Equal(t, []string{"FRAG", "NEW"}, m.Templates[0].Hooks)
	assert.Nil(t, m.Templates[1].Hooks)

	assert.Equal(t, "Outline", m.Functions[0].Name)
	assert.Equal(t, "#K#NEW", m.Functions[0].AppendAfter)
	assert.Equal(t, []string{"NEW"}, m.Functions[0].CodeHooks)
}

func TestDefaultTransformOptions(t *testing.T) {
	p := testProject()

	err := (&Default{}).Transform(context.Background(), map[string]interface{}{
		"trim":           false,
		"dropEmptyHooks": false,
		"displayName":    `{{ .Module | default "Project" }}: {{ .Name | trimPrefix "_" }}`,
	}, p)
	require.NoError(t, err)

	assert.Equal(t, " Toon ", p.Name)
	assert.Equal(t, "Project:  _MainTex ", p.Properties[0].DisplayName)
	assert.Equal(t, "Outline: OutlineColor", p.Modules[0].Properties[1].DisplayName)
	assert.Equal(t, []string{" FRAG ", "", "OLD"}, p.Modules[0].Templates[0].Hooks)
}

func TestDefaultTransformErrors(t *testing.T) {
	err := (&Default{}).Transform(context.Background(), map[string]interface{}{"displayName": "{{ .Nope"}, testProject())
	assert.Error(t, err)

	err = (&Default{}).Transform(context.Background(), "not options", testProject())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = (&Default{}).Transform(ctx, nil, testProject())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWords(t *testing.T) {
	assert.Equal(t, "Outline Width", Words("_OutlineWidth"))
	assert.Equal(t, "Color", Words("color"))
	assert.Equal(t, "", Words("_"))
}

func TestDescriptionMarkdown(t *testing.T) {
	md := (&Default{}).DescriptionMarkdown()
	assert.Contains(t, md, "displayName")
	assert.Contains(t, md, "Words|")
}

func TestApply(t *testing.T) {
	p := testProject()

	out, err := Apply(context.Background(), p, Step{Transformer: &Default{}})
	require.NoError(t, err)

	assert.Equal(t, "Toon", out.Name)
	assert.Equal(t, " Toon ", p.Name)
	assert.Equal(t, " outline ", p.Modules[0].ID)
	assert.Equal(t, "outline", out.Modules[0].ID)

	_, err = Apply(context.Background(), p, Step{Transformer: &Default{}, Options: 1})
	assert.Error(t, err)
}
