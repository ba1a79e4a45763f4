package markdown

import (
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// OptionsTable renders the fields of an options struct
// with their descriptions and default values.
func OptionsTable(opts interface{}) string {
	var entriesBuilder strings.Builder

	optsVal := reflect.Indirect(reflect.ValueOf(opts))
	optsTp := optsVal.Type()

	entriesBuilder.WriteString(`
| Option | Description | Type | Default Value |
|:------:|-------------|:----:|:--------------|
`[1:])

	fieldNames := make(map[string]int, optsTp.NumField())
	fields := make([]string, 0, optsTp.NumField())
	for i := 0; i < optsTp.NumField(); i++ {
		field := optsTp.Field(i)
		name := strings.Split(field.Tag.Get("yaml"), ",")[0]
		if name == "-" || field.PkgPath != "" {
			continue
		}
		if name == "" {
			name = field.Name
		}
		fieldNames[name] = i
		fields = append(fields, name)
	}

	sort.Strings(fields)

	for _, f := range fields {
		field := optsTp.Field(fieldNames[f])
		val := optsVal.Field(fieldNames[f]).Interface()

		valB, err := yaml.Marshal(val)
		if err != nil {
			valB = []byte("-\n")
		}

		entriesBuilder.WriteString(
			strings.Join(
				[]string{
					f,
					field.Tag.Get("description") + ".",
					field.Type.String(),
					strings.Replace("<pre lang=\"yaml\">"+strings.TrimSuffix(string(valB), "\n")+"</pre>", "\n", "<br>", -1),
				},
				"|",
			) + "|\n",
		)
	}

	return entriesBuilder.String()
}

// ValuesTable renders the fields of a template values struct.
func ValuesTable(values interface{}) string {
	var entriesBuilder strings.Builder

	tp := reflect.Indirect(reflect.ValueOf(values)).Type()

	entriesBuilder.WriteString(`
| Value | Description |
|:-----:|-------------|
`[1:])

	fields := make([]string, 0, tp.NumField())
	descriptions := make(map[string]string, tp.NumField())
	for i := 0; i < tp.NumField(); i++ {
		field := tp.Field(i)
		fields = append(fields, field.Name)
		descriptions[field.Name] = field.Tag.Get("description")
	}

	sort.Strings(fields)

	for _, f := range fields {
		entriesBuilder.WriteString(strings.Join([]string{f, descriptions[f]}, "|") + "|\n")
	}

	return entriesBuilder.String()
}

// Demote moves every heading of md one level lower,
// so that it can be embedded under another heading.
func Demote(md string) string {
	lines := strings.Split(md, "\n")
	fenced := false
	for i, line := range lines {
		if strings.HasPrefix(line, "```") {
			fenced = !fenced
		}
		if !fenced && strings.HasPrefix(line, "#") {
			lines[i] = "#" + line
		}
	}
	return strings.Join(lines, "\n")
}
