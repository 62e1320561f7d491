package runner

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
	"github.com/aretw0/arbor/pkg/ports"
	json "github.com/goccy/go-json"
)

// Reporter receives the snapshot of every tick.
// This allows switching between human (Text) and structured (JSON) output.
type Reporter interface {
	Report(ctx context.Context, snap *ports.Snapshot) error
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ctx context.Context, snap *ports.Snapshot) error

func (f ReporterFunc) Report(ctx context.Context, snap *ports.Snapshot) error {
	return f(ctx, snap)
}

// StatusStyle decorates a status for display, e.g. with terminal colors.
type StatusStyle func(domain.Status) string

// TextReporter prints one line per tick.
type TextReporter struct {
	Writer  io.Writer
	Style   StatusStyle
	Verbose bool // also print every node with its status
}

// NewTextReporter creates a reporter writing to w (stdout if nil).
func NewTextReporter(w io.Writer, style StatusStyle) *TextReporter {
	if w == nil {
		w = os.Stdout
	}
	if style == nil {
		style = domain.Status.String
	}
	return &TextReporter{Writer: w, Style: style}
}

func (r *TextReporter) Report(ctx context.Context, snap *ports.Snapshot) error {
	if _, err := fmt.Fprintf(r.Writer, "tick %d: %s\n", snap.Tick, r.Style(snap.Status)); err != nil {
		return err
	}
	if !r.Verbose {
		return nil
	}

	var err error
	snap.Tree.Walk(func(s *node.Snapshot, depth int) {
		if err != nil {
			return
		}
		label := string(s.Kind)
		if s.Name != "" {
			label = fmt.Sprintf("%s(%q)", s.Kind, s.Name)
		}
		if s.Index != nil {
			label = fmt.Sprintf("%s[%d]", label, *s.Index)
		}
		_, err = fmt.Fprintf(r.Writer, "  %*s%s %s\n", depth*2, "", label, r.Style(s.Status))
	})
	return err
}

// JSONReporter emits each snapshot as a JSON line.
type JSONReporter struct {
	Encoder *json.Encoder
}

// NewJSONReporter creates a JSON-Lines reporter writing to w (stdout if nil).
func NewJSONReporter(w io.Writer) *JSONReporter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONReporter{Encoder: json.NewEncoder(w)}
}

func (r *JSONReporter) Report(ctx context.Context, snap *ports.Snapshot) error {
	return r.Encoder.Encode(snap)
}
