package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
)

// DefaultTimeout bounds a single command run. Capabilities must not block a
// tick for long.
const DefaultTimeout = 5 * time.Second

// Runner builds command-backed capabilities.
type Runner struct {
	baseDir string
	timeout time.Duration
	logger  *slog.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithTimeout sets the default per-run timeout. Non-positive values keep
// DefaultTimeout.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithLogger configures the runner logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a new process runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		timeout: DefaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	return r
}

// Source turns every entry of cfg into a capability. Entries with an
// invalid timeout or no command are skipped and reported.
func (r *Runner) Source(cfg ConfigFile) (registry.Static, error) {
	var src registry.Static
	var errs []error
	for _, c := range cfg.Actions {
		cmd, err := r.command(c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		src.ActionList = append(src.ActionList, domain.NewAction(c.Name, cmd.execute))
	}
	for _, c := range cfg.Senses {
		cmd, err := r.command(c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		src.SenseList = append(src.SenseList, domain.NewSense(c.Name, cmd.evaluate))
	}
	return src, errors.Join(errs...)
}

type command struct {
	cfg     CommandConfig
	timeout time.Duration
	dir     string
	logger  *slog.Logger
}

func (r *Runner) command(c CommandConfig) (*command, error) {
	if c.Command == "" {
		return nil, fmt.Errorf("capability %q: no command", c.Name)
	}
	timeout, err := c.timeout(r.timeout)
	if err != nil {
		return nil, err
	}
	return &command{cfg: c, timeout: timeout, dir: r.baseDir, logger: r.logger}, nil
}

func (c *command) run(kind string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.cfg.Command, c.cfg.Args...)
	cmd.Dir = c.dir
	cmd.WaitDelay = 100 * time.Millisecond
	env := []string{
		"ARBOR_CAPABILITY=" + c.cfg.Name,
		"ARBOR_KIND=" + kind,
	}
	for k, v := range c.cfg.Environment {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = append(cmd.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("timed out after %s: %w", c.timeout, ctx.Err())
		}
		c.logger.Debug("capability command failed",
			"capability", c.cfg.Name, "error", err, "stderr", strings.TrimSpace(stderr.String()))
		return stdout.String(), err
	}
	return stdout.String(), nil
}

func (c *command) execute() domain.Status {
	out, err := c.run("Action")
	if err != nil {
		return domain.Failure
	}
	if status, ok := lastStatus(out); ok {
		return status
	}
	return domain.Success
}

func (c *command) evaluate() bool {
	_, err := c.run("Sense")
	return err == nil
}

// lastStatus reads a status name from the last non-empty line of out.
func lastStatus(out string) (domain.Status, bool) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return domain.StatusInvalid, false
	}
	status, err := domain.ParseStatus(last)
	return status, err == nil
}
