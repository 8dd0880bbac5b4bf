package validation

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
)

// FieldError is a validation failure for a single field path.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// FieldErrors is the result of Validate, ordered by path.
type FieldErrors []*FieldError

// Has reports whether path has at least one error.
func (fe FieldErrors) Has(path string) bool {
	for _, e := range fe {
		if e.Path == path {
			return true
		}
	}
	return false
}

// For returns the messages reported for path.
func (fe FieldErrors) For(path string) []string {
	var msgs []string
	for _, e := range fe {
		if e.Path == path {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

// ByPath groups messages by field path, the shape form clients consume.
func (fe FieldErrors) ByPath() map[string][]string {
	out := make(map[string][]string, len(fe))
	for _, e := range fe {
		out[e.Path] = append(out[e.Path], e.Message)
	}
	return out
}

// Err returns nil when there are no errors, otherwise a single error
// aggregating all of them.
func (fe FieldErrors) Err() error {
	result := &multierror.Error{}
	for _, e := range fe {
		result = multierror.Append(result, e)
	}
	return result.ErrorOrNil()
}

func (fe FieldErrors) sort() {
	sort.SliceStable(fe, func(i, j int) bool {
		return fe[i].Path < fe[j].Path
	})
}
