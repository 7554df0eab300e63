package graphql

import (
	"bytes"
	"maps"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/matzehuels/fusiongraph/pkg/errors"
)

// Document is a parsed GraphQL document holding exactly one named operation.
type Document struct {
	doc *ast.QueryDocument
	op  *ast.OperationDefinition
	src string
}

// Parse parses src and checks that it holds a single named operation.
func Parse(src string) (*Document, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "document", Input: src})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse graphql document")
	}
	if len(doc.Operations) != 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graphql document must contain exactly one operation, found %d", len(doc.Operations))
	}
	op := doc.Operations[0]
	if op.Name == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graphql operation must be named")
	}
	return &Document{doc: doc, op: op, src: format(doc)}, nil
}

// MustParse is like [Parse] but panics on error. It is meant for package-level
// query variables.
func MustParse(src string) *Document {
	d, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the operation name.
func (d *Document) Name() string { return d.op.Name }

// Mutation reports whether the operation is a mutation.
func (d *Document) Mutation() bool { return d.op.Operation == ast.Mutation }

// String returns the normalized document text.
func (d *Document) String() string { return d.src }

// Request builds a request for the document with the given variables.
func (d *Document) Request(vars map[string]any) *Request {
	return &Request{
		Query:         d.src,
		OperationName: d.op.Name,
		Variables:     maps.Clone(vars),
		mutation:      d.Mutation(),
	}
}

func format(doc *ast.QueryDocument) string {
	var buf bytes.Buffer
	formatter.NewFormatter(&buf, formatter.WithIndent("  ")).FormatQueryDocument(doc)
	return buf.String()
}
