package builder

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/arbor/pkg/blueprint"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
	"github.com/google/uuid"
)

// Policy decides what a build error does to the overall build.
type Policy int

const (
	// Lenient drops the offending subtree: a decorator whose child failed is
	// built without a child, a composite simply omits the failed child. The
	// build only fails when the top-level record itself cannot be built.
	Lenient Policy = iota
	// Strict fails the whole build on the first description problem.
	Strict
)

func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "lenient"
}

// ParsePolicy accepts "lenient" or "strict". The empty string is Lenient.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	default:
		return Lenient, fmt.Errorf("unknown build policy %q", s)
	}
}

var (
	errNoChild        = errors.New("decorator has no child")
	errExtraChildren  = errors.New("decorator accepts a single child, extra children ignored")
	errChildAndList   = errors.New("both child and children given, children ignored")
	errChildOnList    = errors.New("composite takes children, child ignored")
	errLeafChildren   = errors.New("leaf cannot have children, ignored")
	errEmptyName      = errors.New("leaf has no capability name")
	errDuplicateID    = errors.New("duplicate node id, a fresh id was assigned")
	errNoTree         = errors.New("document has no tree")
	errNilRecord      = errors.New("empty record")
	errRootNotBuilt   = errors.New("top-level record could not be built")
	errTreeInvariants = errors.New("built tree violates invariants")
)

// Option configures a Builder.
type Option func(*Builder)

// WithPolicy sets the failure propagation policy (default Lenient).
func WithPolicy(p Policy) Option {
	return func(b *Builder) {
		b.policy = p
	}
}

// WithLogger sets the logger used to report build issues.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithIDGenerator overrides how ids are assigned to records that carry none.
func WithIDGenerator(gen func() string) Option {
	return func(b *Builder) {
		b.newID = gen
	}
}

// Builder turns blueprints into executable trees, validating every leaf
// against a capability catalog.
type Builder struct {
	catalog *Catalog
	policy  Policy
	logger  *slog.Logger
	newID   func() string
}

// New creates a Builder for the given catalog.
func New(catalog *Catalog, opts ...Option) *Builder {
	b := &Builder{
		catalog: catalog,
		policy:  Lenient,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if b.catalog == nil {
		b.catalog = NewCatalog(nil, nil)
	}
	return b
}

// Policy returns the configured policy.
func (b *Builder) Policy() Policy { return b.policy }

// Result is the outcome of a successful build.
type Result struct {
	Tree *node.BehaviorTree
	// Issues lists the problems tolerated under the Lenient policy.
	Issues []*BuildError
}

// Usable reports whether the tree can do anything at all: false when the top
// node is a decorator that ended up without a child.
func (r *Result) Usable() bool {
	if r == nil || r.Tree == nil || r.Tree.Root == nil {
		return false
	}
	switch v := r.Tree.Root.(type) {
	case *node.Root:
		return v.Child() != nil
	case *node.Inverter:
		return v.Child() != nil
	case *node.PrioritySelector, *node.StatefulSequence, *node.Action, *node.Sense:
		return true
	}
	return false
}

// Build constructs a tree from a decoded document.
func (b *Builder) Build(doc *blueprint.Document) (*Result, error) {
	if doc == nil || doc.Tree == nil {
		return nil, &AggregateError{Errors: []*BuildError{{Path: "$", Err: fmt.Errorf("%w: %w", domain.ErrMalformedNode, errNoTree)}}}
	}

	run := &build{Builder: b, ids: make(map[string]bool)}
	root := run.node(doc.Tree, "$")

	if len(run.issues) > 0 && b.policy == Strict {
		b.logger.Error("behavior tree build rejected", "policy", b.policy, "issues", len(run.issues))
		return nil, &AggregateError{Errors: run.issues}
	}
	if root == nil {
		issues := append(run.issues, &BuildError{Path: "$", Kind: doc.Tree.Type, Name: doc.Tree.Name, Err: errRootNotBuilt})
		b.logger.Error("behavior tree build failed", "issues", len(issues))
		return nil, &AggregateError{Errors: issues}
	}

	if err := node.Verify(root, b.catalog.Allows); err != nil {
		return nil, fmt.Errorf("%w: %w", errTreeInvariants, err)
	}

	tree := node.New(root, doc.Description)
	b.logger.Info("behavior tree built",
		"nodes", len(tree.Nodes()),
		"issues", len(run.issues),
		"policy", b.policy)

	return &Result{Tree: tree, Issues: run.issues}, nil
}

// BuildBlueprint is a convenience for a bare record without envelope.
func (b *Builder) BuildBlueprint(bp *blueprint.Blueprint, description string) (*Result, error) {
	return b.Build(&blueprint.Document{Tree: bp, Description: description})
}

// build holds the state of a single Build call.
type build struct {
	*Builder
	ids    map[string]bool
	issues []*BuildError
}

func (r *build) report(path string, bp *blueprint.Blueprint, err error) {
	be := &BuildError{Path: path, Err: err}
	if bp != nil {
		be.Kind, be.Name = bp.Type, bp.Name
	}
	r.issues = append(r.issues, be)
	r.logger.Warn("behavior tree build issue", "path", path, "node", be.Label(), "error", err)
}

func (r *build) id(path string, bp *blueprint.Blueprint) node.Option {
	id := bp.ID
	if id != "" && r.ids[id] {
		r.report(path, bp, fmt.Errorf("%w: %w: %q", domain.ErrMalformedNode, errDuplicateID, id))
		id = ""
	}
	if id == "" {
		id = r.newID()
	}
	r.ids[id] = true
	return node.WithID(id)
}

// node builds bp bottom-up and returns nil if the record itself failed.
func (r *build) node(bp *blueprint.Blueprint, path string) node.Node {
	if bp == nil {
		r.report(path, bp, fmt.Errorf("%w: %w", domain.ErrMalformedNode, errNilRecord))
		return nil
	}
	if bp.Malformed != nil {
		r.report(path, bp, bp.Malformed)
		return nil
	}
	if len(bp.Unknown) > 0 {
		r.logger.Debug("ignoring unknown blueprint fields", "path", path, "fields", bp.Unknown)
	}

	kind, err := bp.Kind()
	if err != nil {
		r.report(path, bp, err)
		return nil
	}

	switch kind {
	case domain.KindAction, domain.KindSense:
		return r.leaf(kind, bp, path)
	case domain.KindRoot, domain.KindInverter:
		return r.decorator(kind, bp, path)
	case domain.KindPrioritySelector, domain.KindStatefulSequence:
		return r.composite(kind, bp, path)
	}
	r.report(path, bp, fmt.Errorf("%w: %q", domain.ErrUnknownKind, bp.Type))
	return nil
}

func (r *build) leaf(kind domain.Kind, bp *blueprint.Blueprint, path string) node.Node {
	if bp.Child != nil || len(bp.Children) > 0 {
		r.report(path, bp, fmt.Errorf("%w: %w", domain.ErrMalformedNode, errLeafChildren))
	}
	if bp.Name == "" {
		r.report(path, bp, fmt.Errorf("%w: %w", domain.ErrMalformedNode, errEmptyName))
		return nil
	}
	if !r.catalog.Allows(kind, bp.Name) {
		r.report(path, bp, fmt.Errorf("%s %q: %w", kind, bp.Name, domain.ErrCapabilityUnavailable))
		return nil
	}

	id := r.id(path, bp)
	if kind == domain.KindAction {
		return node.NewAction(bp.Name, id)
	}
	return node.NewSense(bp.Name, id)
}

func (r *build) decorator(kind domain.Kind, bp *blueprint.Blueprint, path string) node.Node {
	var child node.Node
	switch {
	case bp.Child != nil:
		if len(bp.Children) > 0 {
			r.report(path, bp, fmt.Errorf("%w: %w", domain.ErrMalformedNode, errChildAndList))
		}
		child = r.node(bp.Child, path+".child")
	case len(bp.Children) > 0:
		// Legacy form: the first element of "children" is the child.
		if len(bp.Children) > 1 {
			r.report(path, bp, fmt.Errorf("%w: %w", domain.ErrMalformedNode, errExtraChildren))
		}
		child = r.node(bp.Children[0], path+".children[0]")
	default:
		r.report(path, bp, fmt.Errorf("%w: %w", domain.ErrMalformedNode, errNoChild))
	}

	id := r.id(path, bp)
	if kind == domain.KindRoot {
		return node.NewRoot(child, id)
	}
	return node.NewInverter(child, id)
}

func (r *build) composite(kind domain.Kind, bp *blueprint.Blueprint, path string) node.Node {
	if bp.Child != nil {
		r.report(path, bp, fmt.Errorf("%w: %w", domain.ErrMalformedNode, errChildOnList))
	}

	children := make([]node.Node, 0, len(bp.Children))
	for i, c := range bp.Children {
		if n := r.node(c, fmt.Sprintf("%s.children[%d]", path, i)); n != nil {
			children = append(children, n)
		}
	}

	id := r.id(path, bp)
	if kind == domain.KindPrioritySelector {
		return node.NewPrioritySelector(children, id)
	}
	return node.NewStatefulSequence(children, id)
}
