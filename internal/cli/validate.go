package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/arbor/pkg/blueprint"
	"github.com/aretw0/arbor/pkg/builder"
)

// ValidateOptions configures Validate.
type ValidateOptions struct {
	Blueprint string
	Actions   []string
	Senses    []string
	Script    string
	Commands  string
	Strict    bool
	Out       io.Writer
	Logger    *slog.Logger
}

// Validate builds a blueprint against a catalog and reports the outcome.
// Tolerated issues are printed; an error means no tree could be built.
func Validate(opts ValidateOptions) (*builder.Result, error) {
	opts.Out, opts.Logger = withDefaults(opts.Out, opts.Logger)
	caps, err := LoadCapabilities(opts.Script, opts.Commands, opts.Logger)
	if err != nil {
		return nil, err
	}
	catalog := caps.Catalog(opts.Actions, opts.Senses)

	doc, err := loadBlueprint(context.Background(), opts.Blueprint)
	if errors.Is(err, blueprint.ErrFeedback) {
		printSystemMessage(opts.Out, "Generator feedback: %s", doc.Feedback)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	policy := builder.Lenient
	if opts.Strict {
		policy = builder.Strict
	}
	res, err := builder.New(catalog, builder.WithPolicy(policy), builder.WithLogger(opts.Logger)).Build(doc)
	if err != nil {
		for _, be := range builder.BuildErrors(err) {
			fmt.Fprintf(opts.Out, "  - %s\n", be)
		}
		return nil, err
	}

	fmt.Fprintf(opts.Out, "%s\n", doc.Tree)
	for _, issue := range res.Issues {
		fmt.Fprintf(opts.Out, "  - %s\n", issue)
	}
	if !res.Usable() {
		return res, errors.New("tree has no usable root")
	}
	printSystemMessage(opts.Out, "%d nodes, %d issues (%s)", len(res.Tree.Nodes()), len(res.Issues), policy)
	return res, nil
}
