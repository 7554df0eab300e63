package mfg

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/matzehuels/fusiongraph/pkg/errors"
)

func TestMaterializeDiamond(t *testing.T) {
	want := []Line{
		{0, "A", "Assembly"},
		{1, "B", "Left"},
		{2, "D", "Bolt"},
		{1, "C", "Right"},
		{2, "D", "Bolt"},
	}

	for _, mode := range []Mode{ModeFlat, ModeLazy} {
		t.Run(string(mode), func(t *testing.T) {
			f := newFakeAPI("A", diamond())
			tree, err := NewClient(f, Options{}).ModelHierarchy(context.Background(), f.key, HierarchyOptions{Mode: mode})
			if err != nil {
				t.Fatal(err)
			}
			got, err := Materialize(tree)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got, want) {
				t.Errorf("Materialize() =\n%v\nwant\n%v", got, want)
			}
		})
	}
}

func TestMaterializeFlatOrder(t *testing.T) {
	h := &FlatHierarchy{
		Root: ComponentVersion{ID: "A", Name: "A"},
		Occurrences: []Occurrence{
			{ParentID: "B", ChildID: "E", ChildName: "E"},
			{ParentID: "A", ChildID: "C", ChildName: "C"},
			{ParentID: "A", ChildID: "B", ChildName: "B"},
			{ParentID: "B", ChildID: "D", ChildName: "D"},
			{ParentID: "X", ChildID: "Y", ChildName: "orphan"},
		},
	}
	got, err := Materialize(h)
	if err != nil {
		t.Fatal(err)
	}
	want := []Line{{0, "A", "A"}, {1, "C", "C"}, {1, "B", "B"}, {2, "E", "E"}, {2, "D", "D"}}
	if !slices.Equal(got, want) {
		t.Errorf("Materialize() = %v, want %v", got, want)
	}
}

func TestMaterializeLeafRoot(t *testing.T) {
	h := &NodeHierarchy{RootID: "A", Nodes: map[ComponentVersionID]*ComponentVersion{
		"A": {ID: "A", Name: "Part", Expanded: true},
	}}
	got, err := Materialize(h)
	if err != nil {
		t.Fatal(err)
	}
	if want := []Line{{0, "A", "Part"}}; !slices.Equal(got, want) {
		t.Errorf("Materialize() = %v, want %v", got, want)
	}
}

func TestMaterializeCycle(t *testing.T) {
	tests := []struct {
		name    string
		tree    Tree
		message string
	}{
		{
			name: "self reference",
			tree: &NodeHierarchy{RootID: "A", Nodes: map[ComponentVersionID]*ComponentVersion{
				"A": {ID: "A", Children: []string{"A"}, Expanded: true},
			}},
			message: "cycle detected: A -> A",
		},
		{
			name: "deep cycle",
			tree: &NodeHierarchy{RootID: "A", Nodes: map[ComponentVersionID]*ComponentVersion{
				"A": {ID: "A", Children: []string{"B"}, Expanded: true},
				"B": {ID: "B", Children: []string{"C"}, Expanded: true},
				"C": {ID: "C", Children: []string{"B"}, Expanded: true},
			}},
			message: "cycle detected: B -> C -> B",
		},
		{
			name: "flat cycle",
			tree: &FlatHierarchy{Root: ComponentVersion{ID: "A"}, Occurrences: []Occurrence{
				{ParentID: "A", ChildID: "B"},
				{ParentID: "B", ChildID: "A"},
			}},
			message: "cycle detected: A -> B -> A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Materialize(tt.tree)
			if !errors.Is(err, errors.ErrCodeCycle) {
				t.Fatalf("err = %v, want CYCLE_DETECTED", err)
			}
			if got := errors.UserMessage(err); got != tt.message {
				t.Errorf("message = %q, want %q", got, tt.message)
			}
		})
	}
}

func TestMaterializeUnresolved(t *testing.T) {
	tests := []struct {
		name  string
		nodes map[ComponentVersionID]*ComponentVersion
	}{
		{"placeholder child", map[ComponentVersionID]*ComponentVersion{
			"A": {ID: "A", Children: []string{"B"}, Expanded: true},
			"B": {ID: "B"},
		}},
		{"missing child", map[ComponentVersionID]*ComponentVersion{
			"A": {ID: "A", Children: []string{"B"}, Expanded: true},
		}},
		{"missing root", map[ComponentVersionID]*ComponentVersion{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Materialize(&NodeHierarchy{RootID: "A", Nodes: tt.nodes})
			if !errors.Is(err, errors.ErrCodeUnresolvedNode) {
				t.Errorf("err = %v, want UNRESOLVED_NODE", err)
			}
		})
	}
}

func TestMaterializeDeepTree(t *testing.T) {
	// A chain deeper than any reasonable goroutine stack would allow with
	// recursion per level.
	const depth = 100000
	nodes := make(map[ComponentVersionID]*ComponentVersion, depth)
	for i := range depth {
		n := &ComponentVersion{ID: fmt.Sprint(i), Expanded: true}
		if i < depth-1 {
			n.Children = []string{fmt.Sprint(i + 1)}
		}
		nodes[n.ID] = n
	}
	lines, err := Materialize(&NodeHierarchy{RootID: "0", Nodes: nodes})
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != depth || lines[depth-1].Depth != depth-1 {
		t.Errorf("lines = %d, last depth = %d", len(lines), lines[len(lines)-1].Depth)
	}
}
