package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/matzehuels/fusiongraph/pkg/mfg"
)

var (
	rootStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	itemStyle   = lipgloss.NewStyle()
	branchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).PaddingRight(1)
)

// Tree renders lines as a lipgloss tree.
func Tree(lines []mfg.Line, opts Options) string {
	if len(lines) == 0 {
		return ""
	}
	root := tree.Root(label(lines[0], opts)).Enumerator(tree.RoundedEnumerator)
	if opts.Color {
		root = root.RootStyle(rootStyle).ItemStyle(itemStyle).EnumeratorStyle(branchStyle)
	}

	// parents[d] is the subtree that receives lines of depth d+1.
	parents := []*tree.Tree{root}
	for _, l := range lines[1:] {
		parents = parents[:l.Depth]
		sub := tree.Root(label(l, opts))
		parents[len(parents)-1].Child(sub)
		parents = append(parents, sub)
	}
	return root.String()
}

// Plain writes one line per position indented by two spaces per level.
func Plain(w io.Writer, lines []mfg.Line, opts Options) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, strings.Repeat("  ", l.Depth)+label(l, opts)); err != nil {
			return err
		}
	}
	return nil
}

// Node is the nested form of a materialized hierarchy.
type Node struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Nest rebuilds the nested tree from depth-first lines.
func Nest(lines []mfg.Line) *Node {
	if len(lines) == 0 {
		return nil
	}
	root := &Node{ID: lines[0].ID, Name: lines[0].Name}
	stack := []*Node{root}
	for _, l := range lines[1:] {
		stack = stack[:l.Depth]
		n := &Node{ID: l.ID, Name: l.Name}
		parent := stack[len(stack)-1]
		parent.Children = append(parent.Children, n)
		stack = append(stack, n)
	}
	return root
}
