package mfg

import (
	"context"

	"github.com/matzehuels/fusiongraph/pkg/errors"
	"github.com/matzehuels/fusiongraph/pkg/observability"
)

// FlatHierarchy is a root plus every occurrence below it, in the order the
// server returned them.
type FlatHierarchy struct {
	Root        ComponentVersion `json:"root" yaml:"root"`
	Occurrences []Occurrence     `json:"occurrences" yaml:"occurrences"`

	index map[ComponentVersionID][]ComponentVersion
}

type occurrenceResult struct {
	Parent *ref `json:"parentComponentVersion"`
	Child  *ref `json:"componentVersion"`
}

type flatRoot struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	AllOccurrences *page[occurrenceResult] `json:"allOccurrences"`
}

type occurrencesPageResponse struct {
	ComponentVersion *flatRoot `json:"componentVersion"`
}

// FetchAllOccurrences resolves key and pages through every occurrence of
// the root component version. Pages are requested until the server returns
// no cursor. Any failure aborts the whole fetch.
func FetchAllOccurrences(ctx context.Context, q Querier, key LookupKey) (*FlatHierarchy, error) {
	res, err := lookup[flatRoot](ctx, q, key, flatLookupQuery.Request)
	if err != nil {
		return nil, err
	}
	root := res.Root
	if root.ID == "" {
		return nil, malformed(flatLookupQuery.Name(), "tipRootComponentVersion.id")
	}

	h := &FlatHierarchy{Root: ComponentVersion{ID: root.ID, Name: root.Name, Expanded: true}}
	cursor, err := h.appendPage(ctx, flatLookupQuery.Name(), root.AllOccurrences)
	if err != nil {
		return nil, err
	}

	for cursor != "" {
		var resp occurrencesPageResponse
		vars := map[string]any{"componentVersionId": root.ID, "cursor": cursor}
		if err := q.Do(ctx, occurrencesPageQuery.Request(vars), &resp); err != nil {
			return nil, err
		}
		if resp.ComponentVersion == nil {
			return nil, malformed(occurrencesPageQuery.Name(), "componentVersion")
		}
		if cursor, err = h.appendPage(ctx, occurrencesPageQuery.Name(), resp.ComponentVersion.AllOccurrences); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *FlatHierarchy) appendPage(ctx context.Context, op string, p *page[occurrenceResult]) (string, error) {
	if p == nil {
		return "", malformed(op, "allOccurrences")
	}
	for _, r := range p.Results {
		if r.Parent == nil || r.Parent.ID == "" || r.Child == nil || r.Child.ID == "" {
			return "", errors.New(errors.ErrCodeMalformedResponse, "%s: occurrence without parent or child id", op)
		}
		h.Occurrences = append(h.Occurrences, Occurrence{
			ParentID:  r.Parent.ID,
			ChildID:   r.Child.ID,
			ChildName: r.Child.Name,
		})
	}
	observability.Hierarchy().OnPage(ctx, len(p.Results))
	return p.cursor(), nil
}

// RootNode implements [Tree].
func (h *FlatHierarchy) RootNode() ComponentVersion { return h.Root }

// Children implements [Tree]. Children of an id are the occurrences whose
// parent is that id, in arrival order.
func (h *FlatHierarchy) Children(id ComponentVersionID) ([]ComponentVersion, error) {
	if h.index == nil {
		h.index = make(map[ComponentVersionID][]ComponentVersion)
		for _, o := range h.Occurrences {
			h.index[o.ParentID] = append(h.index[o.ParentID], ComponentVersion{ID: o.ChildID, Name: o.ChildName})
		}
	}
	return h.index[id], nil
}

// Len returns the number of occurrences.
func (h *FlatHierarchy) Len() int { return len(h.Occurrences) }
