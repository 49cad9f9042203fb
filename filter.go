package warden

import (
	"fmt"
	"strings"

	"github.com/EvilLord666/warden/internal/proctree"
)

type (
	// Filter excludes matching processes from a tree. Children inherit the
	// filters of the node they are attached under.
	Filter = proctree.Filter

	// FilterField selects the attribute a Filter inspects.
	FilterField = proctree.FilterField

	// FilterOp is the comparison a Filter applies.
	FilterOp = proctree.FilterOp
)

// Filter fields and comparisons.
const (
	FieldName = proctree.FieldName
	FieldPath = proctree.FieldPath

	OpEquals   = proctree.OpEquals
	OpContains = proctree.OpContains
	OpPrefix   = proctree.OpPrefix
	OpSuffix   = proctree.OpSuffix
	OpGlob     = proctree.OpGlob
)

var filterOps = []struct {
	token string
	op    FilterOp
}{
	{"==", OpEquals},
	{"~=", OpContains},
	{"^=", OpPrefix},
	{"$=", OpSuffix},
	{"*=", OpGlob},
}

// ParseFilter parses "FIELD OP VALUE" without spaces, where FIELD is name
// or path and OP is one of == (equals), ~= (contains), ^= (prefix),
// $= (suffix) or *= (glob). For example "name==CrashReporter.exe" or
// "path^=/usr/lib/". The first operator in s wins, so values may contain
// operator characters.
func ParseFilter(s string) (Filter, error) {
	at, width := -1, 0
	var op FilterOp
	for _, candidate := range filterOps {
		if i := strings.Index(s, candidate.token); i >= 0 && (at < 0 || i < at) {
			at, width, op = i, len(candidate.token), candidate.op
		}
	}
	if at < 0 {
		return Filter{}, fmt.Errorf("filter %q: missing operator", s)
	}

	field, value := s[:at], s[at+width:]
	f := Filter{Op: op, Value: value}
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "name":
		f.Field = FieldName
	case "path":
		f.Field = FieldPath
	default:
		return Filter{}, fmt.Errorf("filter %q: unknown field %q", s, field)
	}
	if value == "" {
		return Filter{}, fmt.Errorf("filter %q: empty value", s)
	}
	return f, nil
}

// ParseFilters parses every element of specs with ParseFilter.
func ParseFilters(specs []string) ([]Filter, error) {
	out := make([]Filter, 0, len(specs))
	for _, s := range specs {
		f, err := ParseFilter(s)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
