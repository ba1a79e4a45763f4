package common

import (
	"fmt"
	"strings"
)

// Hook marker sigils.
const (
	// GlobalSigil starts a hook marker that is shared by every module.
	GlobalSigil = "#K#"

	// InstanceSigil starts a hook marker that is renamed for each
	// module that includes it.
	InstanceSigil = "#KI#"
)

// Default hook names.
const (
	DefaultVariablesKeyword   = "DEFAULT_VARIABLES"
	DefaultCodeKeyword        = "DEFAULT_CODE"
	TemplatePropertiesKeyword = "SHADER_PROPERTIES"
)

// Marker returns the global hook marker for a keyword.
func Marker(keyword string) string {
	return GlobalSigil + keyword
}

// InstanceMarker returns the instance hook marker for a keyword.
func InstanceMarker(keyword string) string {
	return InstanceSigil + keyword
}

// Dialect describes the shape of the generated documents.
//
// Content is never parsed, the dialect only tells the generator how
// to write the parts it synthesizes and how to recognize them again
// when the document is normalized.
type Dialect struct {
	DocumentHeader   string   `yaml:"documentHeader" description:"Format of the document header line, receives the document name"`
	PropertiesHeader string   `yaml:"propertiesHeader" description:"Header line of the properties block"`
	BodyHeader       string   `yaml:"bodyHeader" description:"Header line of the block that contains the root template"`
	Footer           string   `yaml:"footer" description:"Format of the footer line written when a custom editor is set"`
	Condition        string   `yaml:"condition" description:"Format of a runtime check, receives the checked expression"`
	Comparison       string   `yaml:"comparison" description:"Format of an enabler value check, receives the enabler name and value"`
	Conjunction      string   `yaml:"conjunction" description:"Operator that joins enabler value checks"`
	Call             string   `yaml:"call" description:"Format of a function call, receives the function name"`
	Declaration      string   `yaml:"declaration" description:"Format of a variable declaration, receives the type and the name"`
	ScaleOffset      string   `yaml:"scaleOffset" description:"Format of the companion declaration of texture variables, receives the name"`
	TextureTypes     []string `yaml:"textureTypes" description:"Variable types that need a scale/offset companion declaration"`
	Property         string   `yaml:"property" description:"Format of a property line, receives attributes, name, display name, type and default value"`
	LineComment      string   `yaml:"lineComment" description:"Prefix of comment lines"`
	Indent           string   `yaml:"indent" description:"Indentation unit"`
}

// DefaultDialect returns the ShaderLab-like default dialect.
func DefaultDialect() *Dialect {
	return &Dialect{
		DocumentHeader:   `Shader "%s"`,
		PropertiesHeader: "Properties",
		BodyHeader:       "SubShader",
		Footer:           `CustomEditor "%s"`,
		Condition:        "if(%s)",
		Comparison:       "%s == %d",
		Conjunction:      " && ",
		Call:             "%s();",
		Declaration:      "%s %s;",
		ScaleOffset:      "float4 %s_ST;",
		TextureTypes:     []string{"sampler2D", "Texture2D"},
		Property:         `%s %s("%s", %s) = %s`,
		LineComment:      "//",
		Indent:           "\t",
	}
}

// ConditionLine renders a runtime check for one or more enabler values.
func (d *Dialect) ConditionLine(names []string, values []int) string {
	parts := make([]string, 0, len(names))
	for i := range names {
		parts = append(parts, fmt.Sprintf(d.Comparison, names[i], values[i]))
	}
	return fmt.Sprintf(d.Condition, strings.Join(parts, d.Conjunction))
}

// Guard wraps a body in a runtime check.
func (d *Dialect) Guard(condition, body string) string {
	var b strings.Builder
	b.WriteString(condition + "\n")
	b.WriteString("{\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// IsTexture reports whether a variable type needs a scale/offset companion.
func (d *Dialect) IsTexture(tp string) bool {
	for _, t := range d.TextureTypes {
		if t == tp {
			return true
		}
	}
	return false
}

// IsComment reports whether a trimmed line only contains a comment.
func (d *Dialect) IsComment(line string) bool {
	return d.LineComment != "" && strings.HasPrefix(line, d.LineComment)
}

// DescriptionMarkdown is implemented by parsers and transformers
// that have a long markdown description of their options.
type DescriptionMarkdown interface {
	DescriptionMarkdown() string
}
