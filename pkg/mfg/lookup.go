package mfg

import (
	"context"

	"github.com/matzehuels/fusiongraph/pkg/errors"
)

// page is the results/pagination envelope used by every list field.
type page[T any] struct {
	Results    []T         `json:"results"`
	Pagination *pagination `json:"pagination"`
}

type pagination struct {
	Cursor *string `json:"cursor"`
}

// cursor returns the continuation cursor, or "" when there are no more pages.
func (p *page[T]) cursor() string {
	if p == nil || p.Pagination == nil || p.Pagination.Cursor == nil {
		return ""
	}
	return *p.Pagination.Cursor
}

type ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// lookupResponse is the typed data of every hub -> project -> item lookup.
// R is the selection on the tip root component version.
type lookupResponse[R any] struct {
	Hubs *page[hubResult[R]] `json:"hubs"`
}

type hubResult[R any] struct {
	ID       string                  `json:"id"`
	Name     string                  `json:"name"`
	Projects *page[projectResult[R]] `json:"projects"`
}

type projectResult[R any] struct {
	ID    string               `json:"id"`
	Name  string               `json:"name"`
	Items *page[itemResult[R]] `json:"items"`
}

type itemResult[R any] struct {
	ID                      string `json:"id"`
	Name                    string `json:"name"`
	TipRootComponentVersion *R     `json:"tipRootComponentVersion"`
}

// resolved is the path a lookup took.
type resolved[R any] struct {
	HubID, ProjectID, ItemID string
	Root                     *R
}

// resolve walks the lookup levels in order and fails on the first level
// whose name does not match exactly one result. Items that are not designs
// (no tip root component version) are skipped.
func (r *lookupResponse[R]) resolve(op string, key LookupKey) (*resolved[R], error) {
	if r.Hubs == nil {
		return nil, malformed(op, "hubs")
	}
	if err := single(len(r.Hubs.Results), errors.ErrCodeHubNotFound, "hub", key.Hub); err != nil {
		return nil, err
	}
	hub := r.Hubs.Results[0]
	if hub.Projects == nil {
		return nil, malformed(op, "hubs.projects")
	}
	if err := single(len(hub.Projects.Results), errors.ErrCodeProjectNotFound, "project", key.Project); err != nil {
		return nil, err
	}
	project := hub.Projects.Results[0]
	if project.Items == nil {
		return nil, malformed(op, "projects.items")
	}
	var designs []itemResult[R]
	for _, item := range project.Items.Results {
		if item.TipRootComponentVersion != nil {
			designs = append(designs, item)
		}
	}
	if err := single(len(designs), errors.ErrCodeComponentNotFound, "component", key.Component); err != nil {
		return nil, err
	}
	return &resolved[R]{
		HubID:     hub.ID,
		ProjectID: project.ID,
		ItemID:    designs[0].ID,
		Root:      designs[0].TipRootComponentVersion,
	}, nil
}

// single fails with code unless a name filter matched exactly one result.
func single(n int, code errors.Code, level, name string) error {
	switch {
	case n == 0:
		return errors.New(code, "%s %q does not exist", level, name)
	case n > 1:
		return errors.New(code, "%s %q is ambiguous: %d results match", level, name, n)
	}
	return nil
}

func malformed(op, field string) error {
	return errors.New(errors.ErrCodeMalformedResponse, "%s: response is missing %s", op, field)
}

// lookup validates key, runs doc's lookup and resolves the tip root
// component version.
func lookup[R any](ctx context.Context, q Querier, key LookupKey, req requestFunc) (*resolved[R], error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	r := req(key.variables())
	var resp lookupResponse[R]
	if err := q.Do(ctx, r, &resp); err != nil {
		return nil, err
	}
	return resp.resolve(r.OperationName, key)
}
