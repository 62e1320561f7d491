package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/arbor/pkg/adapters/loam"
	"github.com/aretw0/arbor/pkg/adapters/process"
	"github.com/aretw0/arbor/pkg/adapters/script"
	"github.com/aretw0/arbor/pkg/blueprint"
	"github.com/aretw0/arbor/pkg/builder"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
)

// Capabilities is the merged capability source of a command.
type Capabilities struct {
	registry.Static
	// Script is set when a script file was loaded.
	Script *script.Script
}

// LoadCapabilities merges scripted capabilities and command-backed ones.
// Either path may be empty.
func LoadCapabilities(scriptPath, commandsPath string, logger *slog.Logger) (*Capabilities, error) {
	_, logger = withDefaults(nil, logger)
	caps := &Capabilities{}
	if scriptPath != "" {
		s, err := script.Load(scriptPath)
		if err != nil {
			return nil, err
		}
		caps.Script = s
		caps.ActionList = append(caps.ActionList, s.Actions()...)
		caps.SenseList = append(caps.SenseList, s.Senses()...)
	}
	if commandsPath != "" {
		cfg, err := process.LoadCommands(commandsPath)
		if err != nil {
			return nil, err
		}
		src, err := process.NewRunner(process.WithLogger(logger)).Source(cfg)
		if err != nil {
			return nil, fmt.Errorf("invalid command capabilities: %w", err)
		}
		caps.ActionList = append(caps.ActionList, src.ActionList...)
		caps.SenseList = append(caps.SenseList, src.SenseList...)
	}
	return caps, nil
}

// Catalog lists the capability names the source provides, plus extra.
func (c *Capabilities) Catalog(extraActions, extraSenses []string) *builder.Catalog {
	actions := append([]string{}, extraActions...)
	for _, a := range c.ActionList {
		actions = append(actions, a.Name())
	}
	senses := append([]string{}, extraSenses...)
	for _, s := range c.SenseList {
		senses = append(senses, s.Name())
	}
	return builder.NewCatalog(actions, senses)
}

// blueprintCatalog admits every capability a description names. It is used
// where only the structure matters, e.g. for rendering.
func blueprintCatalog(bp *blueprint.Blueprint) *builder.Catalog {
	var actions, senses []string
	var visit func(b *blueprint.Blueprint)
	visit = func(b *blueprint.Blueprint) {
		if b == nil {
			return
		}
		switch kind, _ := b.Kind(); kind {
		case domain.KindAction:
			actions = append(actions, b.Name)
		case domain.KindSense:
			senses = append(senses, b.Name)
		}
		visit(b.Child)
		for _, c := range b.Children {
			visit(c)
		}
	}
	visit(bp)
	return builder.NewCatalog(actions, senses)
}

// sequentialIDs generates short ids (n1, n2, ...) for readable output.
func sequentialIDs() func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("n%d", n)
	}
}

// loadBlueprint reads a description file. Markdown files are read from their
// directory as a blueprint library; anything else is decoded as JSON or YAML.
func loadBlueprint(ctx context.Context, path string) (*blueprint.Document, error) {
	if loam.IsDocument(path) {
		return loam.LoadFile(ctx, path)
	}
	return blueprint.Load(path)
}
