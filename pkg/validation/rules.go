package validation

import (
	"net/url"
	"reflect"
	"strings"
	"unicode/utf8"
)

// Rule checks one value. A nil value means the field is absent or null.
type Rule interface {
	Apply(c *Context, value any) []*FieldError
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(c *Context, value any) []*FieldError

func (f RuleFunc) Apply(c *Context, value any) []*FieldError {
	return f(c, value)
}

// Required fails for absent values, blank strings and empty slices.
func Required(message string) Rule {
	if message == "" {
		message = "This field is required"
	}
	return RuleFunc(func(c *Context, value any) []*FieldError {
		if isEmpty(value) {
			return []*FieldError{c.NewError(message)}
		}
		return nil
	})
}

// URL requires an absolute http or https URL with a host. Empty values pass;
// combine with Required to make the field mandatory.
func URL(message string) Rule {
	if message == "" {
		message = "Must be a valid URL"
	}
	return stringRule(func(c *Context, s string) []*FieldError {
		u, err := url.Parse(s)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return []*FieldError{c.NewError(message)}
		}
		return nil
	})
}

// MinLen requires at least n characters, or n elements for slices.
func MinLen(n int) Rule {
	return RuleFunc(func(c *Context, value any) []*FieldError {
		if isEmpty(value) {
			return nil
		}
		if l, unit := length(value); l >= 0 && l < n {
			return []*FieldError{c.NewErrorf("Must be at least %d %s", n, unit)}
		}
		return nil
	})
}

// MaxLen allows at most n characters, or n elements for slices.
func MaxLen(n int) Rule {
	return RuleFunc(func(c *Context, value any) []*FieldError {
		if l, unit := length(value); l > n {
			return []*FieldError{c.NewErrorf("Must be at most %d %s", n, unit)}
		}
		return nil
	})
}

// OneOf requires a string value from allowed.
func OneOf(allowed ...string) Rule {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return stringRule(func(c *Context, s string) []*FieldError {
		if _, ok := set[s]; !ok {
			return []*FieldError{c.NewErrorf("Must be one of: %s", strings.Join(allowed, ", "))}
		}
		return nil
	})
}

// Each applies rules to every element of a slice value. Element errors are
// reported at path[i]. A non-slice value fails.
func Each(rules ...Rule) Rule {
	return RuleFunc(func(c *Context, value any) []*FieldError {
		if value == nil {
			return nil
		}
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return []*FieldError{c.NewError("Must be a list")}
		}

		var errs []*FieldError
		for i := 0; i < rv.Len(); i++ {
			ec := c.PushIndex(i)
			elem := rv.Index(i).Interface()
			for _, rule := range rules {
				if fieldErrs := rule.Apply(ec, elem); len(fieldErrs) > 0 {
					errs = append(errs, fieldErrs...)
					break
				}
			}
		}
		return errs
	})
}

// When applies rules only if cond holds for the whole value set.
func When(cond func(c *Context) bool, rules ...Rule) Rule {
	return RuleFunc(func(c *Context, value any) []*FieldError {
		if !cond(c) {
			return nil
		}
		for _, rule := range rules {
			if errs := rule.Apply(c, value); len(errs) > 0 {
				return errs
			}
		}
		return nil
	})
}

// stringRule runs check on non-empty string values and rejects other types.
func stringRule(check func(c *Context, s string) []*FieldError) Rule {
	return RuleFunc(func(c *Context, value any) []*FieldError {
		if value == nil {
			return nil
		}
		s, ok := value.(string)
		if !ok {
			return []*FieldError{c.NewErrorf("Must be a string, got %T", value)}
		}
		if s == "" {
			return nil
		}
		return check(c, s)
	})
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	}
	return false
}

// length returns -1 for values without a length.
func length(value any) (int, string) {
	if value == nil {
		return -1, ""
	}
	if s, ok := value.(string); ok {
		return utf8.RuneCountInString(s), "characters"
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len(), "items"
	}
	return -1, ""
}
