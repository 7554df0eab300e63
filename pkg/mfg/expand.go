package mfg

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/matzehuels/fusiongraph/pkg/errors"
	"github.com/matzehuels/fusiongraph/pkg/graphql"
	"github.com/matzehuels/fusiongraph/pkg/observability"
)

// NodeHierarchy is a hierarchy assembled node by node. Every id reachable
// from RootID has an expanded entry in Nodes once [Expand] has returned.
type NodeHierarchy struct {
	RootID ComponentVersionID                       `json:"root_id" yaml:"root_id"`
	Nodes  map[ComponentVersionID]*ComponentVersion `json:"nodes" yaml:"nodes"`
}

type childResult struct {
	Child *ref `json:"componentVersion"`
}

type nodeResult struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Occurrences *page[childResult] `json:"occurrences"`
}

type childrenPageResponse struct {
	ComponentVersion *nodeResult `json:"componentVersion"`
}

// LazyHierarchy resolves key, records the root and its direct children and
// expands the rest of the tree with [Expand].
func LazyHierarchy(ctx context.Context, q Querier, key LookupKey) (*NodeHierarchy, error) {
	res, err := lookup[nodeResult](ctx, q, key, lazyLookupQuery.Request)
	if err != nil {
		return nil, err
	}
	if res.Root.ID == "" {
		return nil, malformed(lazyLookupQuery.Name(), "tipRootComponentVersion.id")
	}

	h := &NodeHierarchy{RootID: res.Root.ID, Nodes: make(map[ComponentVersionID]*ComponentVersion)}
	root, err := mergeNode(ctx, q, h.Nodes, lazyLookupQuery.Name(), res.Root)
	if err != nil {
		return nil, err
	}
	if err := Expand(ctx, q, h.Nodes, root.Children); err != nil {
		return nil, err
	}
	return h, nil
}

// Expand seeds a placeholder for every id in frontier and then fetches every
// placeholder in nodes, one batched request per round, until none is left.
// Entries that are already expanded are never requested again, so an id
// shared by several parents is fetched once and a map without placeholders
// issues no request at all.
func Expand(ctx context.Context, q Querier, nodes map[ComponentVersionID]*ComponentVersion, frontier []ComponentVersionID) error {
	for _, id := range frontier {
		if _, ok := nodes[id]; !ok {
			nodes[id] = &ComponentVersion{ID: id}
		}
	}
	for round := 1; ; round++ {
		pending := placeholders(nodes)
		if len(pending) == 0 {
			return nil
		}
		observability.Hierarchy().OnRound(ctx, round, len(pending))
		if err := expandRound(ctx, q, nodes, pending); err != nil {
			return err
		}
	}
}

// placeholders returns the sorted ids of entries that were never expanded.
func placeholders(nodes map[ComponentVersionID]*ComponentVersion) []ComponentVersionID {
	var ids []ComponentVersionID
	for id, n := range nodes {
		if !n.Expanded {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// expandRound issues one batched request for ids and merges the results,
// matching each sub-response by the id it carries.
func expandRound(ctx context.Context, q Querier, nodes map[ComponentVersionID]*ComponentVersion, ids []ComponentVersionID) error {
	batch, err := graphql.NewBatch(expandTemplate, "componentVersionId", ids, nil)
	if err != nil {
		return err
	}
	op := batch.Request.OperationName

	var data json.RawMessage
	if err := q.Do(ctx, batch.Request, &data); err != nil {
		return err
	}
	results, err := batch.Results(data)
	if err != nil {
		return err
	}

	decoded := make([]*nodeResult, 0, len(results))
	seen := make(map[ComponentVersionID]bool, len(results))
	for _, raw := range results {
		var r nodeResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return errors.Wrap(errors.ErrCodeMalformedResponse, err, "%s: decode component version", op)
		}
		if !batch.Contains(r.ID) {
			return errors.New(errors.ErrCodeMalformedResponse, "%s: response contains unrequested component version %q", op, r.ID)
		}
		if seen[r.ID] {
			return errors.New(errors.ErrCodeMalformedResponse, "%s: component version %q returned twice", op, r.ID)
		}
		seen[r.ID] = true
		decoded = append(decoded, &r)
	}
	for _, id := range ids {
		if !seen[id] {
			return errors.New(errors.ErrCodeMalformedResponse, "%s: no data for component version %q", op, id)
		}
	}

	for _, r := range decoded {
		if _, err := mergeNode(ctx, q, nodes, op, r); err != nil {
			return err
		}
	}
	return nil
}

// mergeNode records r as an expanded entry and adds a placeholder for each
// child that has no entry yet. Additional pages of children are fetched one
// by one. An entry that is already expanded is left untouched.
func mergeNode(ctx context.Context, q Querier, nodes map[ComponentVersionID]*ComponentVersion, op string, r *nodeResult) (*ComponentVersion, error) {
	if existing, ok := nodes[r.ID]; ok && existing.Expanded {
		return existing, nil
	}
	if r.Occurrences == nil {
		return nil, malformed(op, "occurrences")
	}

	n := &ComponentVersion{ID: r.ID, Name: r.Name, Expanded: true}
	p := r.Occurrences
	for {
		for _, c := range p.Results {
			if c.Child == nil || c.Child.ID == "" {
				return nil, errors.New(errors.ErrCodeMalformedResponse, "%s: child of %q without id", op, r.ID)
			}
			n.Children = append(n.Children, c.Child.ID)
			if _, ok := nodes[c.Child.ID]; !ok {
				nodes[c.Child.ID] = &ComponentVersion{ID: c.Child.ID, Name: c.Child.Name}
			}
		}
		cursor := p.cursor()
		if cursor == "" {
			break
		}
		var resp childrenPageResponse
		vars := map[string]any{"componentVersionId": r.ID, "cursor": cursor}
		if err := q.Do(ctx, childrenPageQuery.Request(vars), &resp); err != nil {
			return nil, err
		}
		if resp.ComponentVersion == nil || resp.ComponentVersion.Occurrences == nil {
			return nil, malformed(childrenPageQuery.Name(), "componentVersion.occurrences")
		}
		op, p = childrenPageQuery.Name(), resp.ComponentVersion.Occurrences
	}

	nodes[r.ID] = n
	return n, nil
}

// RootNode implements [Tree].
func (h *NodeHierarchy) RootNode() ComponentVersion {
	if n, ok := h.Nodes[h.RootID]; ok {
		return *n
	}
	return ComponentVersion{ID: h.RootID}
}

// Children implements [Tree]. It fails with UNRESOLVED_NODE when id or one
// of its children has no entry, or when id was never expanded.
func (h *NodeHierarchy) Children(id ComponentVersionID) ([]ComponentVersion, error) {
	n, ok := h.Nodes[id]
	if !ok || !n.Expanded {
		return nil, errors.New(errors.ErrCodeUnresolvedNode, "component version %q was never expanded", id)
	}
	out := make([]ComponentVersion, 0, len(n.Children))
	for _, c := range n.Children {
		child, ok := h.Nodes[c]
		if !ok {
			return nil, errors.New(errors.ErrCodeUnresolvedNode, "component version %q referenced by %q has no entry", c, id)
		}
		out = append(out, *child)
	}
	return out, nil
}

// Len returns the number of entries.
func (h *NodeHierarchy) Len() int { return len(h.Nodes) }
