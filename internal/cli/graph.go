package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/builder"
	"github.com/aretw0/arbor/pkg/node"
	"github.com/aretw0/arbor/pkg/ports"
	json "github.com/goccy/go-json"
)

// Graph writes a Mermaid flowchart. With a snapshot file the recorded tree
// is drawn with its statuses; otherwise the blueprint structure is drawn.
func Graph(blueprintPath, snapshotPath string, out io.Writer) error {
	var tree *node.Snapshot
	var overlay *graph.GraphOverlay

	switch {
	case snapshotPath != "":
		data, err := os.ReadFile(snapshotPath)
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}
		var snap ports.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return fmt.Errorf("failed to parse snapshot: %w", err)
		}
		if snap.Tree == nil {
			return errors.New("snapshot has no tree")
		}
		tree, overlay = snap.Tree, graph.StatusOverlay(snap.Tree)
	case blueprintPath != "":
		doc, err := loadBlueprint(context.Background(), blueprintPath)
		if err != nil {
			return err
		}
		b := builder.New(blueprintCatalog(doc.Tree), builder.WithIDGenerator(sequentialIDs()))
		res, err := b.Build(doc)
		if err != nil {
			return err
		}
		tree = res.Tree.Snapshot()
	default:
		return errors.New("a blueprint or a snapshot is required")
	}

	_, err := io.WriteString(out, graph.GenerateMermaid(tree, overlay))
	return err
}
