// Package graphql is a small GraphQL-over-HTTP client for the manufacturing
// data model API.
//
// Documents are parsed once with gqlparser ([MustParse]) so malformed queries
// fail at program start rather than at request time. [Client.Do] posts a
// [Request], maps transport and protocol failures onto fusiongraph error
// codes and decodes the data member into a typed value.
//
// [NewBatch] turns a single-field template such as
//
//	query GetComponentVersion($id: ID!) {
//	  componentVersion(componentVersionId: $id) { id name }
//	}
//
// into one operation that selects the field once per id under a generated
// alias, with one variable per alias. Callers match sub-responses by the ids
// they contain, never by alias order.
package graphql
