// Package mfg reads designs from the manufacturing data model GraphQL API.
//
// Every operation starts from a [LookupKey], the hub, project and component
// names of a design. The lookup resolves one level at a time and reports the
// first level that does not resolve as HUB_NOT_FOUND, PROJECT_NOT_FOUND or
// COMPONENT_NOT_FOUND without issuing further queries.
//
// # Model hierarchy
//
// A hierarchy can be assembled two ways:
//
//   - [FetchAllOccurrences] pages through the flat list of every occurrence
//     below the root (one query per page) and returns a [FlatHierarchy].
//   - [LazyHierarchy] fetches the root with its direct children and then
//     calls [Expand], which fetches each level of placeholders in a single
//     batched request. A tree of depth D costs D+1 queries.
//
// Both results implement [Tree], and [Materialize] turns a Tree into the
// depth-first list of lines that renderers print. Shared subassemblies are
// repeated at every position; a component that contains itself is reported
// as CYCLE_DETECTED.
//
// [Client] wraps these with caching and adds the design helpers: thumbnail
// download, STEP export, physical properties and webhook subscriptions.
package mfg
