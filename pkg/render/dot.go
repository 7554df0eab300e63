package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/fusiongraph/pkg/errors"
	"github.com/matzehuels/fusiongraph/pkg/mfg"
)

// ToDOT converts materialized lines to Graphviz DOT. Each component version
// becomes one node; an edge used by several occurrences is labelled with
// the quantity.
func ToDOT(lines []mfg.Line, opts Options) string {
	type edge struct{ from, to string }

	var (
		nodes []mfg.Line
		seen  = make(map[string]bool)
		edges []edge
		count = make(map[edge]int)
		path  []string
	)
	for _, l := range lines {
		if !seen[l.ID] {
			seen[l.ID] = true
			nodes = append(nodes, l)
		}
		path = append(path[:l.Depth], l.ID)
		if l.Depth == 0 {
			continue
		}
		e := edge{path[l.Depth-1], l.ID}
		if count[e] == 0 {
			edges = append(edges, e)
		}
		count[e]++
	}

	// Repeated subtrees repeat their edges, so quantities are per parent visit.
	visits := make(map[string]int)
	for _, l := range lines {
		visits[l.ID]++
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for i, n := range nodes {
		attrs := []string{fmt.Sprintf("label=%q", dotLabel(n, opts))}
		if i == 0 {
			attrs = append(attrs, "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		qty := count[e] / visits[e.from]
		if qty > 1 {
			fmt.Fprintf(&buf, "  %q -> %q [label=\"x%d\"];\n", e.from, e.to, qty)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.from, e.to)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dotLabel(l mfg.Line, opts Options) string {
	name := l.Name
	if name == "" {
		name = l.ID
	}
	if opts.ShowIDs && name != l.ID {
		return name + "\n" + l.ID
	}
	return name
}

// RenderSVG lays out a DOT graph with Graphviz and returns the SVG.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render SVG")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
