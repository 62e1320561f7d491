package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/pkg/builder"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/runner"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Blueprint string
	Script    string
	Commands  string
	AgentID   string
	Policy    builder.Policy
	Ticks     int
	Interval  time.Duration
	// UntilDone stops as soon as a tick does not return RUNNING.
	UntilDone bool
	JSON      bool
	Verbose   bool
	Out       io.Writer
	Style     runner.StatusStyle
	Logger    *slog.Logger
}

// Simulate builds the blueprint against the given capabilities and ticks it.
// It returns the status of the last tick.
func Simulate(ctx context.Context, opts RunOptions) (domain.Status, error) {
	if opts.Ticks <= 0 {
		return domain.StatusInvalid, fmt.Errorf("ticks must be positive, got %d", opts.Ticks)
	}
	opts.Out, opts.Logger = withDefaults(opts.Out, opts.Logger)
	caps, err := LoadCapabilities(opts.Script, opts.Commands, opts.Logger)
	if err != nil {
		return domain.StatusInvalid, err
	}

	doc, err := loadBlueprint(ctx, opts.Blueprint)
	if err != nil {
		return domain.StatusInvalid, err
	}
	b := builder.New(caps.Catalog(nil, nil), builder.WithPolicy(opts.Policy), builder.WithLogger(opts.Logger))
	res, err := b.Build(doc)
	if err != nil {
		return domain.StatusInvalid, err
	}
	if !opts.JSON {
		for _, issue := range res.Issues {
			printSystemMessage(opts.Out, "ignored %s", issue)
		}
	}
	if !res.Usable() {
		return domain.StatusInvalid, fmt.Errorf("%s: %w", opts.Blueprint, domain.ErrNoTree)
	}

	var reporter runner.Reporter
	if opts.JSON {
		reporter = runner.NewJSONReporter(opts.Out)
	} else {
		text := runner.NewTextReporter(opts.Out, opts.Style)
		text.Verbose = opts.Verbose
		reporter = text
	}

	driverOpts := []runner.Option{runner.WithLogger(opts.Logger), runner.WithReporter(reporter)}
	if opts.AgentID != "" {
		driverOpts = append(driverOpts, runner.WithAgentID(opts.AgentID))
	}
	d := runner.New(driverOpts...)
	if err := d.Activate(ctx, res.Tree, caps); err != nil {
		return domain.StatusInvalid, err
	}

	status := d.Status()
	for i := range opts.Ticks {
		if i > 0 && opts.Interval > 0 {
			select {
			case <-ctx.Done():
				return status, ctx.Err()
			case <-time.After(opts.Interval):
			}
		}
		status, err = d.Tick(ctx)
		if errors.Is(err, domain.ErrNotActive) {
			return status, err
		}
		if err != nil {
			// Reporting failed; the tick itself counts.
			opts.Logger.Warn("tick report failed", "error", err)
		}
		if opts.UntilDone && status != domain.Running {
			break
		}
	}
	return status, nil
}
