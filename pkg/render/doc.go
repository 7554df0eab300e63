// Package render turns assembled model hierarchies and design properties
// into terminal, data and diagram output.
//
// # Hierarchy formats
//
//   - tree: a lipgloss tree with rounded branches (the default)
//   - plain: one line per position, two spaces of indent per level
//   - json, yaml: the nested tree
//   - dot: Graphviz source where a shared component is drawn once
//   - svg: the dot output laid out in-process with go-graphviz
//
// All formats start from [mfg.Materialize], so a shared subassembly is
// repeated under every parent in the tree, plain, json and yaml output.
//
//	lines, err := mfg.Materialize(tree)
//	err = render.Hierarchy(os.Stdout, lines, render.FormatTree, render.Options{})
package render
