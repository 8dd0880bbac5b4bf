package validation

import "fmt"

// Context locates the value being checked and gives rules access to the
// whole value set.
type Context struct {
	Path   string
	Values map[string]any
}

// PushField returns a context for a nested field.
func (c *Context) PushField(field string) *Context {
	if len(c.Path) == 0 {
		return &Context{Path: field, Values: c.Values}
	}

	return &Context{Path: c.Path + "." + field, Values: c.Values}
}

// PushIndex returns a context for a slice element.
func (c *Context) PushIndex(i int) *Context {
	return &Context{Path: fmt.Sprintf("%s[%d]", c.Path, i), Values: c.Values}
}

// Lookup resolves a dotted path against the whole value set.
func (c *Context) Lookup(path string) (any, bool) {
	return lookup(c.Values, path)
}

func (c *Context) NewError(message string) *FieldError {
	return &FieldError{Path: c.Path, Message: message}
}

func (c *Context) NewErrorf(format string, args ...interface{}) *FieldError {
	return c.NewError(fmt.Sprintf(format, args...))
}
