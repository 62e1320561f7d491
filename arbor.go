package arbor

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/arbor/pkg/blueprint"
	"github.com/aretw0/arbor/pkg/builder"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/runner"
)

// Version is the release of the module, overridable with -ldflags.
var Version = "0.1.0"

type options struct {
	logger   *slog.Logger
	policy   builder.Policy
	hooks    domain.LifecycleHooks
	agentID  string
	store    ports.SnapshotStore
	reporter runner.Reporter
}

// Option configures Compile, Activate and Start.
type Option func(*options)

// WithLogger sets a structured logger for the builder and the driver.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithPolicy selects the build policy (lenient by default).
func WithPolicy(p builder.Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithLifecycleHooks registers observability hooks on the driver.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = o.hooks.Merge(hooks)
	}
}

// WithAgentID names the agent the driver ticks for.
func WithAgentID(id string) Option {
	return func(o *options) {
		o.agentID = id
	}
}

// WithSnapshotStore publishes a snapshot after every tick.
func WithSnapshotStore(store ports.SnapshotStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithReporter receives a snapshot after every tick.
func WithReporter(r runner.Reporter) Option {
	return func(o *options) {
		o.reporter = r
	}
}

func apply(opts []Option) *options {
	o := &options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Compile decodes a description and builds it against catalog.
func Compile(data []byte, format blueprint.Format, catalog *builder.Catalog, opts ...Option) (*builder.Result, error) {
	doc, err := blueprint.Decode(data, format)
	if err != nil {
		return nil, err
	}
	return build(doc, catalog, apply(opts))
}

// CompileFile is Compile for a file, the format being inferred from its extension.
func CompileFile(path string, catalog *builder.Catalog, opts ...Option) (*builder.Result, error) {
	doc, err := blueprint.Load(path)
	if err != nil {
		return nil, err
	}
	return build(doc, catalog, apply(opts))
}

func build(doc *blueprint.Document, catalog *builder.Catalog, o *options) (*builder.Result, error) {
	b := builder.New(catalog, builder.WithPolicy(o.policy), builder.WithLogger(o.logger))
	return b.Build(doc)
}

// Activate creates a driver and hands it tree bound to source.
func Activate(ctx context.Context, tree *node.BehaviorTree, source registry.Source, opts ...Option) (*runner.Driver, error) {
	return activate(ctx, tree, source, apply(opts))
}

func activate(ctx context.Context, tree *node.BehaviorTree, source registry.Source, o *options) (*runner.Driver, error) {
	driverOpts := []runner.Option{
		runner.WithLogger(o.logger),
		runner.WithHooks(o.hooks),
	}
	if o.agentID != "" {
		driverOpts = append(driverOpts, runner.WithAgentID(o.agentID))
	}
	if o.store != nil {
		driverOpts = append(driverOpts, runner.WithSnapshotStore(o.store))
	}
	if o.reporter != nil {
		driverOpts = append(driverOpts, runner.WithReporter(o.reporter))
	}

	d := runner.New(driverOpts...)
	if err := d.Activate(ctx, tree, source); err != nil {
		return nil, err
	}
	return d, nil
}

// Start compiles the description at path against the capabilities source
// provides, then activates the result. Build issues are returned in the
// Result; Start only fails when no usable tree could be built.
func Start(ctx context.Context, path string, source registry.Source, opts ...Option) (*runner.Driver, *builder.Result, error) {
	o := apply(opts)
	reg, _ := registry.Bind(source, o.logger)

	doc, err := blueprint.Load(path)
	if err != nil {
		return nil, nil, err
	}
	res, err := build(doc, builder.CatalogFromRegistry(reg), o)
	if err != nil {
		return nil, res, err
	}
	if !res.Usable() {
		return nil, res, fmt.Errorf("%s: %w", path, domain.ErrNoTree)
	}

	d, err := activate(ctx, res.Tree, source, o)
	return d, res, err
}
