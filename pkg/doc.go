// Package pkg provides the libraries behind fusiongraph, a client for the
// manufacturing data model GraphQL API.
//
// # Overview
//
// A design is named by hub, project and component. Its tip version is an
// assembly: component versions that occur inside other component versions.
// The pkg directory is organized into four areas:
//
//  1. [mfg] - Domain logic (lookup, hierarchy assembly, artifacts, webhooks)
//  2. [graphql], [auth], [session] - Transport and credentials
//  3. [cache], [httputil], [observability] - Infrastructure
//  4. [render], [webhook] - Output and the event receiver
//
// # Architecture
//
//	hub / project / component
//	         ↓
//	    [mfg] lookup (one query, per-level not-found errors)
//	         ↓
//	    flat: paged occurrences    lazy: one batched query per level
//	         ↓
//	    [mfg.Materialize] (depth-first lines, shared parts repeated)
//	         ↓
//	    [render] tree / plain / json / yaml / dot / svg
//
// # Quick Start
//
//	gql := graphql.New("", graphql.Options{Tokens: tokens})
//	client := mfg.NewClient(gql, mfg.Options{})
//
//	tree, err := client.ModelHierarchy(ctx, mfg.LookupKey{
//	    Hub: "My Hub", Project: "Bike", Component: "Frame",
//	}, mfg.HierarchyOptions{Mode: mfg.ModeLazy})
//	lines, err := mfg.Materialize(tree)
//	err = render.Hierarchy(os.Stdout, lines, render.FormatTree, render.Options{})
//
// # Error Handling
//
// Errors carry a [errors.Code] so callers can distinguish a missing hub from
// a transport failure:
//
//	if errors.Is(err, errors.ErrCodeHubNotFound) { ... }
package pkg
