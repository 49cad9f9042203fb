package proctree

import (
	"fmt"
	"path"
	"strings"
)

// FilterField selects which attribute of a candidate a Filter inspects.
type FilterField int

const (
	// FieldName matches against the process image name.
	FieldName FilterField = iota
	// FieldPath matches against the executable path.
	FieldPath
)

// FilterOp is the comparison a Filter applies.
type FilterOp int

const (
	OpEquals FilterOp = iota
	OpContains
	OpPrefix
	OpSuffix
	// OpGlob uses path.Match syntax.
	OpGlob
)

// Filter excludes a candidate child from tracking when it matches. All
// comparisons are case-insensitive. An empty attribute never matches.
type Filter struct {
	Field FilterField
	Op    FilterOp
	Value string
}

// String renders the filter for logs.
func (f Filter) String() string {
	field := "name"
	if f.Field == FieldPath {
		field = "path"
	}
	var op string
	switch f.Op {
	case OpEquals:
		op = "=="
	case OpContains:
		op = "contains"
	case OpPrefix:
		op = "prefix"
	case OpSuffix:
		op = "suffix"
	case OpGlob:
		op = "glob"
	default:
		op = fmt.Sprintf("op(%d)", int(f.Op))
	}
	return fmt.Sprintf("%s %s %q", field, op, f.Value)
}

// Match reports whether info is excluded by f.
func (f Filter) Match(info Info) bool {
	subject := info.Name
	if f.Field == FieldPath {
		subject = info.Path
	}
	if subject == "" || f.Value == "" {
		return false
	}
	subject = strings.ToLower(subject)
	value := strings.ToLower(f.Value)

	switch f.Op {
	case OpEquals:
		return subject == value
	case OpContains:
		return strings.Contains(subject, value)
	case OpPrefix:
		return strings.HasPrefix(subject, value)
	case OpSuffix:
		return strings.HasSuffix(subject, value)
	case OpGlob:
		ok, err := path.Match(value, subject)
		return err == nil && ok
	default:
		return false
	}
}

// Filtered reports whether any filter in fs matches info.
func Filtered(fs []Filter, info Info) bool {
	for _, f := range fs {
		if f.Match(info) {
			return true
		}
	}
	return false
}
