package mfg

import (
	"context"

	"github.com/matzehuels/fusiongraph/pkg/graphql"
)

// Querier sends one GraphQL request and decodes its data into out.
// [*graphql.Client] is the production implementation.
type Querier interface {
	Do(ctx context.Context, req *graphql.Request, out any) error
}

type requestFunc func(vars map[string]any) *graphql.Request

var _ Querier = (*graphql.Client)(nil)
