package builder

import (
	"fmt"
	"strings"
)

// BuildError describes why one record of a description could not be built.
type BuildError struct {
	Path string // location in the description, e.g. "$.child.children[1]"
	Kind string // record discriminator as written, possibly unknown
	Name string // capability name for leaves
	Err  error
}

// Label renders the failing record like Action("Jump").
func (e *BuildError) Label() string {
	kind := e.Kind
	if kind == "" {
		kind = "<untyped>"
	}
	if e.Name != "" {
		return fmt.Sprintf("%s(%q)", kind, e.Name)
	}
	return kind
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Path, e.Label(), e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// AggregateError represents every build error of a failed build.
type AggregateError struct {
	Errors []*BuildError
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d build errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Unwrap allows errors.Is / errors.As to match any of the aggregated errors.
func (e *AggregateError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// BuildErrors returns the individual errors if err is an *AggregateError.
// Otherwise returns nil.
func BuildErrors(err error) []*BuildError {
	if aggr, ok := err.(*AggregateError); ok {
		return aggr.Errors
	}
	return nil
}
