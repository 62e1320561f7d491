package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// NewLogger configures the application logger. Logs always go to stderr so
// stdout stays free for tick output and the MCP stdio transport.
func NewLogger(level, format string) (*slog.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(os.Stderr, lvl, format == "json"), nil
}

// withDefaults fills a missing writer with stdout and a missing logger with
// a no-op one.
func withDefaults(out io.Writer, logger *slog.Logger) (io.Writer, *slog.Logger) {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return out, logger
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// StatusStyle colors statuses when f is a terminal and returns nil
// otherwise, leaving the plain names.
func StatusStyle(f *os.File) runner.StatusStyle {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	return colorStyle(termenv.NewOutput(f))
}

func colorStyle(out *termenv.Output) runner.StatusStyle {
	colors := map[domain.Status]string{
		domain.Success: "2",
		domain.Failure: "1",
		domain.Running: "3",
	}
	return func(s domain.Status) string {
		styled := out.String(s.String())
		if c, ok := colors[s]; ok {
			styled = styled.Foreground(out.Color(c)).Bold()
		}
		return styled.String()
	}
}
