package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tamasfe/mosaic/pkg/common"
	"github.com/tamasfe/mosaic/pkg/errs"
	"github.com/tamasfe/mosaic/pkg/module"
	"github.com/tamasfe/mosaic/pkg/validate"
)

const rootTemplate = `Pass
{
#K#DEFAULT_VARIABLES
#K#DEFAULT_CODE
void main()
{
#K#CODE
#K#FRAGMENT
}
}`

func testProject() *module.Project {
	return &module.Project{
		Name:     "Test",
		Path:     "Custom/Test",
		Template: rootTemplate,
		Modules: []*module.Module{
			{
				ID:       "m1",
				Name:     "M1",
				Enablers: []module.Enabler{{Property: module.Property{Name: "E"}, Value: 1}},
				Templates: []module.Template{
					{Body: "m1 body", Hooks: []string{"CODE"}, NeedsVariant: true, Queue: 100},
				},
			},
			{
				ID:   "m2",
				Name: "M2",
				Templates: []module.Template{
					{Body: "m2 body", Hooks: []string{"CODE"}, Queue: 100},
				},
				Functions: []module.Function{
					{
						Name:          "Frag",
						AppendAfter:   "#K#FRAGMENT",
						Queue:         100,
						Body:          "void Frag() {}",
						UsedVariables: []module.Variable{{Name: "_Color", Type: "float4"}},
					},
				},
			},
		},
	}
}

func testGenerator(t *testing.T, opts Options) *Generator {
	opts.Logger = zaptest.NewLogger(t)
	if opts.Workers == 0 {
		opts.Workers = 2
	}
	return New(opts)
}

func TestGenerateAll(t *testing.T) {
	g := testGenerator(t, Options{})

	artifacts, err := g.GenerateAll(context.Background(), testProject())
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	base := artifacts[0]
	require.NoError(t, base.Err)
	assert.Equal(t, "Test.shader", base.FileName)
	assert.Equal(t, "Custom/Test", base.DocumentName)
	assert.Equal(t, module.Assignment{"E": 0}, base.Assignment)
	assert.Empty(t, base.Diagnostics)

	expected := strings.Join([]string{
		`Shader "Custom/Test"`,
		`{`,
		"\tProperties",
		"\t{",
		"\t\t" + `E("E", Float) = 0.0`,
		"\t}",
		"\tSubShader",
		"\t{",
		"\t\tPass",
		"\t\t{",
		"\t\t\tfloat4 _Color;",
		"",
		"\t\t\tvoid Frag() {}",
		"",
		"\t\t\tvoid main()",
		"\t\t\t{",
		"\t\t\t\tm2 body",
		"",
		"\t\t\t\tFrag();",
		"",
		"\t\t\t}",
		"\t\t}",
		"\t}",
		"}",
		"",
	}, "\n")

	if diff := cmp.Diff(expected, base.Text); diff != "" {
		t.Errorf("base variant mismatch (-want +got):\n%s", diff)
	}

	variant := artifacts[1]
	require.NoError(t, variant.Err)
	assert.Equal(t, "Test-v1.shader", variant.FileName)
	assert.Equal(t, "Hidden/Custom/Test-v1", variant.DocumentName)
	assert.Contains(t, variant.Text, "\t\t\t\tm1 body\n\t\t\t\tm2 body\n")
	assert.NotContains(t, variant.Text, "if(E")

	for _, a := range artifacts {
		assert.NotContains(t, a.Text, common.GlobalSigil)
		assert.NotContains(t, a.Text, common.InstanceSigil)
	}
}

func TestGenerateAllDeterministic(t *testing.T) {
	g := testGenerator(t, Options{Workers: 4})

	first, err := g.GenerateAll(context.Background(), testProject())
	require.NoError(t, err)

	second, err := g.GenerateAll(context.Background(), testProject())
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].FileName, second[i].FileName)
		assert.Equal(t, first[i].Text, second[i].Text)
	}
}

func TestGenerateAllRuntimeToggle(t *testing.T) {
	p := testProject()
	p.Modules = append(p.Modules, &module.Module{
		ID:       "live",
		Enablers: []module.Enabler{{Property: module.Property{Name: "L"}, Value: 2}},
		Templates: []module.Template{
			{Body: "live body", Hooks: []string{"CODE"}, Queue: 50},
		},
		Functions: []module.Function{
			{Name: "Live", AppendAfter: "Frag", Body: "void Live() {}"},
		},
	})

	g := testGenerator(t, Options{ShowVariants: true})

	artifacts, err := g.GenerateAll(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	assert.Equal(t, "Custom/Test-v1", artifacts[1].DocumentName)

	for _, a := range artifacts {
		require.NoError(t, a.Err)
		assert.Contains(t, a.Text, "\t\t\t\tif(L == 2)\n\t\t\t\t{\n\t\t\t\t\tlive body\n\t\t\t\t}\n")
		assert.Contains(t, a.Text, "\t\t\t\tFrag();\n\t\t\t\tif(L == 2)\n\t\t\t\t{\n\t\t\t\t\tLive();\n\t\t\t\t}\n")
		assert.Contains(t, a.Text, "\t\t\tfloat L;\n\t\t\tfloat4 _Color;\n")
		assert.Contains(t, a.Text, "void Live() {}")
	}
}

func TestGenerateAllValidation(t *testing.T) {
	p := testProject()
	p.Modules = append(p.Modules, &module.Module{ID: "m1"})

	g := testGenerator(t, Options{})

	_, err := g.GenerateAll(context.Background(), p)

	var verr *errs.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Issues, 2)
}

func TestGenerateAllMissingProperties(t *testing.T) {
	p := testProject()
	p.UseTemplatesForProperties = true
	p.Properties = []module.Property{{Name: "_Color"}}

	_, err := testGenerator(t, Options{MissingProperties: validate.SeverityError}).
		GenerateAll(context.Background(), p)
	var verr *errs.ValidationError
	require.True(t, errors.As(err, &verr))

	artifacts, err := testGenerator(t, Options{MissingProperties: validate.SeverityWarning}).
		GenerateAll(context.Background(), p)
	require.NoError(t, err)
	assert.Contains(t, artifacts[0].Text, "\tProperties\n\t{\n\n\t}\n")
}

func TestGenerateAllConfiguration(t *testing.T) {
	p := testProject()
	p.Template = "  \n"

	_, err := testGenerator(t, Options{}).GenerateAll(context.Background(), p)
	var cerr *errs.ConfigurationError
	require.True(t, errors.As(err, &cerr))

	_, err = testGenerator(t, Options{FilePattern: "{{ .Name"}).GenerateAll(context.Background(), testProject())
	require.True(t, errors.As(err, &cerr))
}

func TestGenerateAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testGenerator(t, Options{}).GenerateAll(ctx, testProject())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateAllDiagnostics(t *testing.T) {
	p := testProject()
	p.Modules[1].Templates = append(p.Modules[1].Templates, module.Template{Hooks: []string{"CODE"}})
	p.Modules[1].Functions[0].Body = ""

	artifacts, err := testGenerator(t, Options{}).GenerateAll(context.Background(), p)
	require.NoError(t, err)

	assert.Len(t, artifacts[0].Diagnostics, 2)
	assert.Contains(t, artifacts[0].Text, "Frag();")
}

func TestGenerateMinimal(t *testing.T) {
	p := testProject()
	configs := []module.Configuration{
		{Name: "plain"},
		{Name: "enabled", Values: map[string]int{"E": 1}},
		{Name: "also-plain", Values: map[string]int{"E": 0}},
	}

	g := testGenerator(t, Options{})

	artifacts, err := g.GenerateMinimal(context.Background(), p, configs)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	assert.Equal(t, []string{"plain", "also-plain"}, artifacts[0].Configurations)
	assert.Equal(t, []string{"enabled"}, artifacts[1].Configurations)
	assert.Equal(t, "Test-v1.shader", artifacts[1].FileName)

	for _, a := range artifacts {
		assert.True(t, strings.HasPrefix(a.DocumentName, "Hidden/Custom/Test-g-"), a.DocumentName)
	}
	assert.NotEqual(t, artifacts[0].DocumentName, artifacts[1].DocumentName)

	again, err := g.GenerateMinimal(context.Background(), p, configs)
	require.NoError(t, err)
	assert.Equal(t, artifacts[1].DocumentName, again[1].DocumentName)

	manifest, err := Manifest(artifacts)
	require.NoError(t, err)
	assert.Contains(t, string(manifest), "enabled:\n    file: Test-v1.shader\n")
	assert.Contains(t, string(manifest), "also-plain:\n    file: Test.shader\n")
}

func TestGenerateMinimalProperties(t *testing.T) {
	p := testProject()
	p.Modules[0].Properties = []module.Property{{Name: "_Outline", Type: "Float", DefaultValue: "1"}}
	p.Modules[1].Properties = []module.Property{{Name: "_Shared", Type: "Float", DefaultValue: "0"}}

	configs := []module.Configuration{
		{Name: "plain"},
		{Name: "enabled", Values: map[string]int{"E": 1}},
	}

	g := testGenerator(t, Options{})

	artifacts, err := g.GenerateMinimal(context.Background(), p, configs)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	plain, enabled := artifacts[0], artifacts[1]
	require.NoError(t, plain.Err)
	require.NoError(t, enabled.Err)

	assert.Contains(t, plain.Text, `_Shared("_Shared", Float) = 0`)
	assert.NotContains(t, plain.Text, "_Outline(")

	assert.Contains(t, enabled.Text, `_Shared("_Shared", Float) = 0`)
	assert.Contains(t, enabled.Text, `_Outline("_Outline", Float) = 1`)

	for _, a := range artifacts {
		assert.NotContains(t, a.Text, `E("E", Float)`)
	}

	all, err := g.GenerateAll(context.Background(), p)
	require.NoError(t, err)
	assert.Contains(t, all[0].Text, `_Outline("_Outline", Float) = 1`)
	assert.Contains(t, all[0].Text, `E("E", Float) = 0.0`)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "a_b_c_d_e_f_g_h_i_j.shader", SanitizeFileName(`a<b>c:d"e/f\g|h?i*j.shader`))
	assert.Equal(t, "tab_name", SanitizeFileName("tab\tname"))
}

func TestDocumentName(t *testing.T) {
	assert.Equal(t, "A/B", DocumentName("A/B", "", true))
	assert.Equal(t, "Hidden/A/B-v1-2", DocumentName("A/B", "1-2", true))
	assert.Equal(t, "A/B-v1-2", DocumentName("A/B", "1-2", false))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "Name", BaseName(&module.Project{Name: "Name", Path: "A/B"}))
	assert.Equal(t, "B", BaseName(&module.Project{Path: "A/B"}))
	assert.Equal(t, "document", BaseName(&module.Project{}))
}

func TestOutline(t *testing.T) {
	g := testGenerator(t, Options{})

	keywords, tree := g.Outline(testProject(), module.Assignment{})
	assert.Equal(t, []string{"#K#DEFAULT_VARIABLES", "#K#DEFAULT_CODE", "#K#CODE", "#K#FRAGMENT"}, keywords)
	assert.Equal(t, "#K#FRAGMENT\n  Frag (M2)\n", tree)
}

func TestFileName(t *testing.T) {
	name, err := testGenerator(t, Options{}).FileName(testProject(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Test-v1.shader", name)

	_, err = testGenerator(t, Options{FilePattern: "{{ .Nope"}).FileName(testProject(), "")
	var cerr *errs.ConfigurationError
	assert.True(t, errors.As(err, &cerr))
}
