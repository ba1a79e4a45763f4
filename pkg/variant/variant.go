// Package variant enumerates the enabler assignments documents are generated for.
package variant

import (
	"sort"

	"github.com/mohae/deepcopy"

	"github.com/tamasfe/mosaic/pkg/module"
)

// Names returns the enabler names that produce separate variants, in
// lexicographic order.
//
// Only modules that have at least one template needing a variant
// contribute their enablers.
func Names(modules []*module.Module) []string {
	set := make(map[string]bool)
	for _, m := range modules {
		if m == nil || !m.NeedsVariant() {
			continue
		}
		for _, e := range m.Enablers {
			if e.Named() {
				set[e.Name] = true
			}
		}
	}
	return sorted(set)
}

// Values returns the distinct values declared for an enabler name by any
// module, always including 0, in ascending order.
func Values(modules []*module.Module, name string) []int {
	set := map[int]bool{0: true}
	for _, m := range modules {
		if m == nil {
			continue
		}
		for _, e := range m.Enablers {
			if e.Name == name {
				set[e.Value] = true
			}
		}
	}

	values := make([]int, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Ints(values)
	return values
}

// Full returns every combination of the variant enabler values.
//
// Names are walked in lexicographic order and values in ascending order,
// depth first, so the result is always in the same order. Without variant
// enablers the result is a single empty assignment.
func Full(modules []*module.Module) []module.Assignment {
	names := Names(modules)

	domains := make([][]int, len(names))
	for i, name := range names {
		domains[i] = Values(modules, name)
	}

	return unroll(names, domains, 0, module.Assignment{})
}

func unroll(names []string, domains [][]int, depth int, current module.Assignment) []module.Assignment {
	if depth == len(names) {
		return []module.Assignment{current}
	}

	var out []module.Assignment
	for _, v := range domains[depth] {
		next := deepcopy.Copy(current).(module.Assignment)
		next[names[depth]] = v
		out = append(out, unroll(names, domains, depth+1, next)...)
	}
	return out
}

// Bucket is a variant shared by one or more configurations.
type Bucket struct {
	Assignment module.Assignment

	// Configurations are the names of the configurations using this variant.
	Configurations []string
}

// EnablerNames returns every named enabler of the modules in lexicographic
// order, whether it needs a variant or not.
func EnablerNames(modules []*module.Module) []string {
	set := make(map[string]bool)
	for _, m := range modules {
		if m == nil {
			continue
		}
		for _, e := range m.Enablers {
			if e.Named() {
				set[e.Name] = true
			}
		}
	}
	return sorted(set)
}

// Minimal groups the configurations by the values they give to the enablers.
//
// Values a configuration doesn't set read as 0. Buckets are returned in
// the order their first configuration appears.
func Minimal(modules []*module.Module, configs []module.Configuration) []Bucket {
	names := EnablerNames(modules)

	var buckets []Bucket

outer:
	for _, c := range configs {
		a := make(module.Assignment, len(names))
		for _, name := range names {
			a[name] = c.Values[name]
		}

		for i := range buckets {
			if buckets[i].Assignment.Equal(a) {
				buckets[i].Configurations = append(buckets[i].Configurations, c.Name)
				continue outer
			}
		}

		buckets = append(buckets, Bucket{
			Assignment:     a,
			Configurations: []string{c.Name},
		})
	}

	return buckets
}

func sorted(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
