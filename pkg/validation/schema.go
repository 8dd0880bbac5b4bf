// Package validation implements schema-driven validation of form values.
//
// A Schema maps dotted field paths to rules. Validate resolves each path in a
// nested map[string]any (as decoded from JSON) and runs its rules in order,
// stopping at the first rule that fails for that field.
//
//	schema := validation.BaseDestinationSchema().Concat(validation.CustomWebhookSchema(false))
//	errs := validation.Validate(schema, values)
//	if err := errs.Err(); err != nil {
//		return err
//	}
package validation

import (
	"sort"
	"strings"
)

// Schema maps a dotted field path to the rules checked against its value.
type Schema map[string][]Rule

// Object nests every path of s under prefix.
func Object(prefix string, s Schema) Schema {
	out := make(Schema, len(s))
	for path, rules := range s {
		out[prefix+"."+path] = rules
	}
	return out
}

// Concat returns a new schema holding the paths of both schemas. Rules of a
// path present in both run receiver rules first.
func (s Schema) Concat(other Schema) Schema {
	out := make(Schema, len(s)+len(other))
	for path, rules := range s {
		out[path] = append([]Rule(nil), rules...)
	}
	for path, rules := range other {
		out[path] = append(out[path], rules...)
	}
	return out
}

// Paths returns the schema paths in sorted order.
func (s Schema) Paths() []string {
	paths := make([]string, 0, len(s))
	for path := range s {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Validate checks values against schema. It never mutates values and returns
// errors ordered by path.
func Validate(schema Schema, values map[string]any) FieldErrors {
	var errs FieldErrors

	for _, path := range schema.Paths() {
		c := &Context{Path: path, Values: values}
		value, _ := lookup(values, path)

		for _, rule := range schema[path] {
			if fieldErrs := rule.Apply(c, value); len(fieldErrs) > 0 {
				errs = append(errs, fieldErrs...)
				break
			}
		}
	}

	errs.sort()
	return errs
}

func lookup(values map[string]any, path string) (any, bool) {
	var current any = values
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
