package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	// Statuses maps node ids to the status they reported last.
	Statuses map[string]domain.Status
}

// StatusOverlay builds an overlay from the statuses recorded in snap.
func StatusOverlay(snap *node.Snapshot) *GraphOverlay {
	o := &GraphOverlay{Statuses: make(map[string]domain.Status)}
	snap.Walk(func(s *node.Snapshot, _ int) {
		o.Statuses[s.ID] = s.Status
	})
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the tree in snap.
// It applies semantic styling per kind:
// - Root: ((Circle))
// - Inverter: {{Hexagon}}
// - PrioritySelector: {Rhombus}
// - StatefulSequence: [Rectangle], with its resume index
// - Action: [[Subroutine]]
// - Sense: ([Stadium])
// Children are numbered in evaluation order. Overlay statuses, if given, are
// applied as classes.
func GenerateMermaid(snap *node.Snapshot, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	snap.Walk(func(s *node.Snapshot, _ int) {
		safeID := sanitizeMermaidID(s.ID)
		opener, closer := shape(s.Kind)
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label(s), closer)

		ordered := len(s.Children) > 1
		for i, child := range s.Children {
			safeTo := sanitizeMermaidID(child.ID)
			if ordered {
				fmt.Fprintf(&sb, "    %s -- \"%d\" --> %s\n", safeID, i+1, safeTo)
			} else {
				fmt.Fprintf(&sb, "    %s --> %s\n", safeID, safeTo)
			}
		}
	})

	if overlay != nil && len(overlay.Statuses) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast on both light and dark themes.
		sb.WriteString("    classDef success fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failure fill:#ffcdd2,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef running fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		ids := make([]string, 0, len(overlay.Statuses))
		for id := range overlay.Statuses {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			status := overlay.Statuses[id]
			if !status.Valid() {
				continue
			}
			fmt.Fprintf(&sb, "    class %s %s;\n", sanitizeMermaidID(id), strings.ToLower(status.String()))
		}
	}

	return sb.String()
}

func shape(kind domain.Kind) (string, string) {
	switch kind {
	case domain.KindRoot:
		return "((", "))"
	case domain.KindInverter:
		return "{{", "}}"
	case domain.KindPrioritySelector:
		return "{", "}"
	case domain.KindAction:
		return "[[", "]]"
	case domain.KindSense:
		return "([", "])"
	default:
		return "[", "]"
	}
}

func label(s *node.Snapshot) string {
	text := string(s.Kind)
	if s.Name != "" {
		// Mermaid labels cannot contain double quotes.
		text = fmt.Sprintf("%s: %s", s.Kind, strings.ReplaceAll(s.Name, "\"", "'"))
	}
	if s.Index != nil {
		text = fmt.Sprintf("%s @%d", text, *s.Index)
	}
	return text
}

func sanitizeMermaidID(id string) string {
	s := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
	switch s {
	case "end", "graph", "subgraph", "class", "classDef", "style":
		s += "_"
	}
	return s
}
