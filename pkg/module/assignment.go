package module

import (
	"sort"
	"strconv"
	"strings"
)

// Assignment maps enabler names to the value they have in a variant.
type Assignment map[string]int

// Keys returns the enabler names in lexicographic order.
func (a Assignment) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Code encodes the assignment for file and document names.
//
// It is empty if every value is 0, otherwise the values
// in key order joined by "-".
func (a Assignment) Code() string {
	keys := a.Keys()

	allZero := true
	values := make([]string, 0, len(keys))
	for _, k := range keys {
		if a[k] != 0 {
			allZero = false
		}
		values = append(values, strconv.Itoa(a[k]))
	}

	if allZero {
		return ""
	}

	return strings.Join(values, "-")
}

// Equal reports whether both assignments have the same names and values.
func (a Assignment) Equal(other Assignment) bool {
	if len(a) != len(other) {
		return false
	}
	for k, v := range a {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// String returns NAME=value pairs in key order.
func (a Assignment) String() string {
	keys := a.Keys()
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+strconv.Itoa(a[k]))
	}
	return strings.Join(pairs, ",")
}
