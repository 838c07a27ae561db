// Package graph renders authoring documents as Mermaid flowcharts.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
	pgraph "github.com/aretw0/parley/pkg/graph"
)

// maxLabel is the rune budget of a node or edge label before it is cut.
const maxLabel = 40

// GraphOverlay contains session data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// Options selects the label language and an optional session overlay.
type Options struct {
	Lang     string
	Fallback string
	Overlay  *GraphOverlay
}

// GenerateMermaid produces a Mermaid flowchart from a document.
// It applies semantic styling:
// - Start: ((Circle))
// - Dialogue: [Rectangle] with the speaker and the line
// - Choice: {Rhombus} with the prompt
// - End: ([Stadium])
// Choice edges are labelled with the option text; correct options carry a check mark.
// Edges whose target is missing are drawn to a dashed placeholder.
func GenerateMermaid(doc *pgraph.Document, opts Options) string {
	if opts.Lang == "" {
		opts.Lang = domain.LangEN
	}
	if opts.Fallback == "" {
		opts.Fallback = domain.LangEN
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range doc.Nodes() {
		safeID := sanitizeMermaidID(node.ID)
		opener, closer := "[", "]"
		label := node.ID

		switch p := node.Payload.(type) {
		case domain.StartPayload:
			opener, closer = "((", "))"
		case domain.DialoguePayload:
			label = line(p.Speaker.Resolve(opts.Lang, opts.Fallback), p.Text.Resolve(opts.Lang, opts.Fallback))
		case domain.ChoicePayload:
			opener, closer = "{", "}"
			if prompt := p.Prompt.Resolve(opts.Lang, opts.Fallback); prompt != "" {
				label = prompt
			}
		case domain.EndPayload:
			opener, closer = "([", "])"
		}
		if label == "" {
			label = node.ID
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escape(truncate(label)), closer))
	}

	missing := make(map[string]bool)
	for _, e := range doc.Edges() {
		from, to := sanitizeMermaidID(e.FromNodeID), sanitizeMermaidID(e.ToNodeID)
		if _, ok := doc.Node(e.ToNodeID); !ok && !missing[e.ToNodeID] {
			missing[e.ToNodeID] = true
			sb.WriteString(fmt.Sprintf("    %s[\"%s ?\"]:::missing\n", to, escape(e.ToNodeID)))
		}

		arrow := "-->"
		if choiceID, ok := domain.ChoiceIDFromPort(e.FromPortName); ok {
			arrow = fmt.Sprintf("-- \"%s\" -->", escape(truncate(choiceLabel(doc, e.FromNodeID, choiceID, opts))))
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", from, arrow, to))
	}

	if len(missing) > 0 {
		sb.WriteString("    classDef missing stroke-dasharray:5 5,stroke:#c62828,color:#c62828;\n")
	}

	if opts.Overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visited := make(map[string]bool)
		for _, id := range opts.Overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !visited[safeID] {
				visited[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}
		if opts.Overlay.CurrentNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(opts.Overlay.CurrentNode)))
		}
	}

	return sb.String()
}

func choiceLabel(doc *pgraph.Document, nodeID, choiceID string, opts Options) string {
	n, _ := doc.Node(nodeID)
	p, _ := n.Payload.(domain.ChoicePayload)
	for _, c := range p.Choices {
		if c.ID != choiceID {
			continue
		}
		text := c.Text.Resolve(opts.Lang, opts.Fallback)
		if text == "" {
			text = c.ID
		}
		if c.IsCorrect {
			return "✓ " + text
		}
		return text
	}
	return choiceID
}

func line(speaker, text string) string {
	if speaker == "" {
		return text
	}
	return speaker + ": " + text
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxLabel {
		return s
	}
	return string(r[:maxLabel-1]) + "…"
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
