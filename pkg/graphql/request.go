package graphql

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Request is the JSON body of a GraphQL POST.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`

	mutation bool
}

// Mutation reports whether the request carries a mutation.
// Mutations are never retried.
func (r *Request) Mutation() bool { return r.mutation }

// Response is the JSON envelope returned by the server.
type Response struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors Errors          `json:"errors,omitempty"`
}

// Error is one entry of the response errors array.
type Error struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Location points into the request document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (e Error) Error() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Path))
	for i, p := range e.Path {
		parts[i] = fmt.Sprint(p)
	}
	return fmt.Sprintf("%s (at %s)", e.Message, strings.Join(parts, "."))
}

// Errors is the errors array of a response. It is itself an error so it can
// travel as the cause of a GRAPHQL_ERROR.
type Errors []Error

func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}
