package mfg

import (
	"context"
	"slices"
	"testing"

	"github.com/matzehuels/fusiongraph/pkg/errors"
)

func TestLazyHierarchyQueryCount(t *testing.T) {
	for depth := 0; depth <= 4; depth++ {
		f := newFakeAPI("r", balanced(depth, 3))

		h, err := LazyHierarchy(context.Background(), f, f.key)
		if err != nil {
			t.Fatalf("depth %d: %v", depth, err)
		}
		if len(f.calls) != depth+1 {
			t.Errorf("depth %d: queries = %d, want %d", depth, len(f.calls), depth+1)
		}
		if len(h.Nodes) != len(f.nodes) {
			t.Errorf("depth %d: nodes = %d, want %d", depth, len(h.Nodes), len(f.nodes))
		}
		for id, n := range h.Nodes {
			if !n.Expanded {
				t.Errorf("depth %d: %s left as placeholder", depth, id)
			}
		}
	}
}

func TestLazyHierarchySharedChildFetchedOnce(t *testing.T) {
	f := newFakeAPI("A", diamond())

	h, err := LazyHierarchy(context.Background(), f, f.key)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"GetRootComponentVersion", "GetComponentVersions", "GetComponentVersions"}
	if !slices.Equal(f.calls, want) {
		t.Errorf("calls = %v, want %v", f.calls, want)
	}

	first := f.requests[1].Variables
	if first["n0"] != "B" || first["n1"] != "C" {
		t.Errorf("first round variables = %v, want B and C in sorted order", first)
	}
	second := f.requests[2].Variables
	if len(second) != 1 || second["n0"] != "D" {
		t.Errorf("second round variables = %v, want only D", second)
	}
	if h.Nodes["D"].Name != "Bolt" || !h.Nodes["D"].Expanded {
		t.Errorf("D = %+v", h.Nodes["D"])
	}
}

func TestExpandIsIdempotent(t *testing.T) {
	f := newFakeAPI("A", diamond())
	h, err := LazyHierarchy(context.Background(), f, f.key)
	if err != nil {
		t.Fatal(err)
	}
	before := len(f.calls)
	snapshot := *h.Nodes["B"]

	if err := Expand(context.Background(), f, h.Nodes, []ComponentVersionID{"B", "C", "D"}); err != nil {
		t.Fatal(err)
	}
	if len(f.calls) != before {
		t.Errorf("Expand over expanded nodes issued %d queries", len(f.calls)-before)
	}
	if got := *h.Nodes["B"]; got.Name != snapshot.Name || !slices.Equal(got.Children, snapshot.Children) {
		t.Errorf("B was overwritten: %+v", got)
	}
}

func TestExpandEmptyFrontier(t *testing.T) {
	f := newFakeAPI("A", diamond())
	if err := Expand(context.Background(), f, map[ComponentVersionID]*ComponentVersion{}, nil); err != nil {
		t.Fatal(err)
	}
	if len(f.calls) != 0 {
		t.Errorf("queries = %v, want none", f.calls)
	}
}

func TestExpandCreatesPlaceholders(t *testing.T) {
	f := newFakeAPI("A", diamond())
	nodes := map[ComponentVersionID]*ComponentVersion{}

	if err := Expand(context.Background(), f, nodes, []ComponentVersionID{"B"}); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"B", "D"} {
		if n := nodes[id]; n == nil || !n.Expanded {
			t.Errorf("%s = %+v, want expanded", id, n)
		}
	}
	if _, ok := nodes["C"]; ok {
		t.Error("C is not reachable from B and should not be fetched")
	}
}

func TestExpandMatchesByReturnedID(t *testing.T) {
	f := newFakeAPI("A", diamond())
	// Swap the aliases: results arrive in the opposite order of the ids.
	f.tamper = func(op string, data map[string]any) {
		if op == "GetComponentVersions" && len(data) == 2 {
			data["n0"], data["n1"] = data["n1"], data["n0"]
		}
	}

	h, err := LazyHierarchy(context.Background(), f, f.key)
	if err != nil {
		t.Fatal(err)
	}
	if h.Nodes["B"].Name != "Left" || h.Nodes["C"].Name != "Right" {
		t.Errorf("B = %+v, C = %+v", h.Nodes["B"], h.Nodes["C"])
	}
}

func TestExpandMalformed(t *testing.T) {
	tests := []struct {
		name   string
		tamper func(op string, data map[string]any)
	}{
		{"unrequested id", func(op string, data map[string]any) {
			if op == "GetComponentVersions" {
				data["n0"].(map[string]any)["id"] = "Z"
			}
		}},
		{"duplicate id", func(op string, data map[string]any) {
			if op == "GetComponentVersions" && len(data) == 2 {
				data["n1"] = data["n0"]
			}
		}},
		{"missing alias", func(op string, data map[string]any) {
			if op == "GetComponentVersions" {
				delete(data, "n0")
			}
		}},
		{"missing occurrences", func(op string, data map[string]any) {
			if op == "GetComponentVersions" {
				delete(data["n0"].(map[string]any), "occurrences")
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeAPI("A", diamond())
			f.tamper = tt.tamper
			_, err := LazyHierarchy(context.Background(), f, f.key)
			if !errors.Is(err, errors.ErrCodeMalformedResponse) {
				t.Errorf("err = %v, want MALFORMED_RESPONSE", err)
			}
		})
	}
}

func TestExpandUnknownNode(t *testing.T) {
	f := newFakeAPI("A", diamond())
	err := Expand(context.Background(), f, map[ComponentVersionID]*ComponentVersion{}, []ComponentVersionID{"ghost"})
	if !errors.Is(err, errors.ErrCodeMalformedResponse) {
		t.Errorf("err = %v, want MALFORMED_RESPONSE", err)
	}
}

func TestLazyHierarchyPagedChildren(t *testing.T) {
	f := newFakeAPI("r", balanced(1, 5))
	f.childPageSize = 2

	h, err := LazyHierarchy(context.Background(), f, f.key)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(h.Nodes["r"].Children); got != 5 {
		t.Errorf("root children = %d, want 5", got)
	}
	if got := f.count("GetOccurrencesPage"); got != 2 {
		t.Errorf("child pages = %d, want 2", got)
	}
	if got := f.count("GetComponentVersions"); got != 1 {
		t.Errorf("expansion rounds = %d, want 1", got)
	}
}

func TestLazyHierarchyCycleTerminates(t *testing.T) {
	f := newFakeAPI("A", map[string]fakeNode{
		"A": {name: "A", children: []string{"B"}},
		"B": {name: "B", children: []string{"A"}},
	})

	h, err := LazyHierarchy(context.Background(), f, f.key)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.calls) != 2 {
		t.Errorf("queries = %v", f.calls)
	}
	if _, err := Materialize(h); !errors.Is(err, errors.ErrCodeCycle) {
		t.Errorf("Materialize err = %v, want CYCLE_DETECTED", err)
	}
}

func TestExpandResolvesExistingPlaceholders(t *testing.T) {
	f := newFakeAPI("A", diamond())
	nodes := map[ComponentVersionID]*ComponentVersion{
		"A": {ID: "A", Name: "Assembly", Expanded: true, Children: []ComponentVersionID{"B", "C"}},
		"B": {ID: "B"},
		"C": {ID: "C"},
	}

	if err := Expand(context.Background(), f, nodes, []ComponentVersionID{"A"}); err != nil {
		t.Fatal(err)
	}
	want := []string{"GetComponentVersions", "GetComponentVersions"}
	if !slices.Equal(f.calls, want) {
		t.Errorf("calls = %v, want %v", f.calls, want)
	}
	for _, id := range []string{"B", "C", "D"} {
		if n := nodes[id]; n == nil || !n.Expanded {
			t.Errorf("%s = %+v, want expanded", id, n)
		}
	}

	lines, err := Materialize(&NodeHierarchy{RootID: "A", Nodes: nodes})
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 5 {
		t.Errorf("lines = %d, want 5", len(lines))
	}
}
