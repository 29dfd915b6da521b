package cluster

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
)

// DOTOptions configures cluster diagram rendering.
type DOTOptions struct {
	// Detailed includes the fingerprint and shape in node labels.
	// When false, only the network name is shown.
	Detailed bool
}

// ToDOT converts a clustering result to Graphviz DOT format. Each cluster
// becomes a subgraph with its members linked to the representative, and
// non-transitive merges appear as dashed edges between the witness and both
// representatives. The resulting DOT string can be rendered with [RenderSVG].
func ToDOT(res *Result, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("graph clusters {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for i, c := range res.Clusters {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=\"cluster %d (%d)\";\n", i, len(c.Members))
		buf.WriteString("    style=rounded;\n")
		rep := c.Representative()
		for _, n := range c.Members {
			label := n.Name()
			if opts.Detailed {
				label = fmt.Sprintf("%s\n%dx%d\n%s", n.Name(), n.NumSpecies(), n.NumReactions(), n.Fingerprint())
			}
			attrs := []string{fmt.Sprintf("label=%q", label)}
			if n == rep {
				attrs = append(attrs, "fillcolor=lightblue")
			}
			fmt.Fprintf(&buf, "    %q [%s];\n", n.Name(), strings.Join(attrs, ", "))
		}
		for _, n := range c.Members[1:] {
			fmt.Fprintf(&buf, "    %q -- %q;\n", rep.Name(), n.Name())
		}
		buf.WriteString("  }\n")
	}

	if len(res.Violations) > 0 {
		buf.WriteString("\n")
		for _, v := range res.Violations {
			fmt.Fprintf(&buf, "  %q -- %q [style=dashed, color=red];\n", v.Witness, v.A)
			fmt.Fprintf(&buf, "  %q -- %q [style=dashed, color=red];\n", v.Witness, v.B)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
