package mfg

import (
	"strings"

	"github.com/matzehuels/fusiongraph/pkg/errors"
)

// Tree is an assembled hierarchy that can be walked from its root.
// Both [*FlatHierarchy] and [*NodeHierarchy] implement it.
type Tree interface {
	RootNode() ComponentVersion
	Children(id ComponentVersionID) ([]ComponentVersion, error)
	Len() int
}

// Line is one visited position of a tree walk.
type Line struct {
	Depth int                `json:"depth" yaml:"depth"`
	ID    ComponentVersionID `json:"id" yaml:"id"`
	Name  string             `json:"name" yaml:"name"`
}

// Materialize walks t depth first and returns one line per position,
// parents before children and siblings in child order. A component version
// that appears under several parents is emitted under each of them. An id
// that reappears on its own path fails with CYCLE_DETECTED.
func Materialize(t Tree) ([]Line, error) {
	type frame struct {
		node  ComponentVersion
		depth int
		exit  bool
	}

	var (
		lines  []Line
		path   []ComponentVersionID
		onPath = make(map[ComponentVersionID]int)
		stack  = []frame{{node: t.RootNode()}}
	)

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.exit {
			onPath[f.node.ID]--
			path = path[:len(path)-1]
			continue
		}
		if onPath[f.node.ID] > 0 {
			cycle := append(cycleFrom(path, f.node.ID), f.node.ID)
			return nil, errors.New(errors.ErrCodeCycle, "cycle detected: %s", strings.Join(cycle, " -> "))
		}

		lines = append(lines, Line{Depth: f.depth, ID: f.node.ID, Name: f.node.Name})

		children, err := t.Children(f.node.ID)
		if err != nil {
			return nil, err
		}

		onPath[f.node.ID]++
		path = append(path, f.node.ID)
		stack = append(stack, frame{node: f.node, exit: true})
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: children[i], depth: f.depth + 1})
		}
	}
	return lines, nil
}

// cycleFrom returns a copy of path starting at the first occurrence of id.
func cycleFrom(path []ComponentVersionID, id ComponentVersionID) []ComponentVersionID {
	for i, p := range path {
		if p == id {
			return append([]ComponentVersionID(nil), path[i:]...)
		}
	}
	return append([]ComponentVersionID(nil), path...)
}
