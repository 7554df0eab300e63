package graphql

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/matzehuels/fusiongraph/pkg/errors"
)

// Batch is one request selecting a template field once per id.
type Batch struct {
	Request *Request
	aliases []string
	ids     map[string]string
}

// NewBatch builds a batch from tmpl, a document whose operation selects a
// single top-level field. variable names the template variable that receives
// the id; every occurrence of it inside the field is renamed to the alias of
// its copy. Other variables are declared once and taken from shared.
//
// Aliases are n0, n1, ... in the order of ids.
func NewBatch(tmpl *Document, variable string, ids []string, shared map[string]any) (*Batch, error) {
	if len(ids) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "batch %s: no ids", tmpl.Name())
	}
	if len(tmpl.op.SelectionSet) != 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "batch %s: template must select exactly one field", tmpl.Name())
	}
	def := tmpl.op.VariableDefinitions.ForName(variable)
	if def == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "batch %s: template does not declare $%s", tmpl.Name(), variable)
	}

	op := &ast.OperationDefinition{
		Operation:  tmpl.op.Operation,
		Name:       tmpl.op.Name,
		Directives: tmpl.op.Directives,
	}
	for _, v := range tmpl.op.VariableDefinitions {
		if v.Variable != variable {
			op.VariableDefinitions = append(op.VariableDefinitions, v)
		}
	}

	b := &Batch{aliases: make([]string, len(ids)), ids: make(map[string]string, len(ids))}
	vars := make(map[string]any, len(ids)+len(shared))
	for k, v := range shared {
		vars[k] = v
	}

	for i, id := range ids {
		alias := fmt.Sprintf("n%d", i)

		// A fresh parse gives an independent copy of the template tree.
		copyDoc, err := parser.ParseQuery(&ast.Source{Name: tmpl.op.Name, Input: tmpl.src})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "batch %s: reparse template", tmpl.Name())
		}
		field, ok := copyDoc.Operations[0].SelectionSet[0].(*ast.Field)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "batch %s: template selection is not a field", tmpl.Name())
		}
		field.Alias = alias
		renameSelections(ast.SelectionSet{field}, variable, alias)
		op.SelectionSet = append(op.SelectionSet, field)
		op.VariableDefinitions = append(op.VariableDefinitions, &ast.VariableDefinition{
			Variable:     alias,
			Type:         def.Type,
			DefaultValue: def.DefaultValue,
		})

		b.aliases[i] = alias
		b.ids[alias] = id
		vars[alias] = id
	}

	doc := &ast.QueryDocument{Operations: ast.OperationList{op}, Fragments: tmpl.doc.Fragments}
	b.Request = &Request{
		Query:         format(doc),
		OperationName: op.Name,
		Variables:     vars,
		mutation:      op.Operation == ast.Mutation,
	}
	return b, nil
}

// Len returns the number of ids in the batch.
func (b *Batch) Len() int { return len(b.aliases) }

// IDs returns the requested ids in alias order.
func (b *Batch) IDs() []string {
	out := make([]string, len(b.aliases))
	for i, a := range b.aliases {
		out[i] = b.ids[a]
	}
	return out
}

// Results splits the data member of a batch response into the sub-responses
// of each alias, in alias order. A missing alias, a null sub-response or an
// alias that was never requested is a malformed response.
func (b *Batch) Results(data json.RawMessage) ([]json.RawMessage, error) {
	var byAlias map[string]json.RawMessage
	if err := json.Unmarshal(data, &byAlias); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedResponse, err, "batch %s: decode data", b.Request.OperationName)
	}
	for alias := range byAlias {
		if _, ok := b.ids[alias]; !ok {
			return nil, errors.New(errors.ErrCodeMalformedResponse, "batch %s: unexpected field %q in response", b.Request.OperationName, alias)
		}
	}
	out := make([]json.RawMessage, 0, len(b.aliases))
	for _, alias := range b.aliases {
		raw, ok := byAlias[alias]
		if !ok || isNull(raw) {
			return nil, errors.New(errors.ErrCodeMalformedResponse, "batch %s: no result for id %s", b.Request.OperationName, b.ids[alias])
		}
		out = append(out, raw)
	}
	return out, nil
}

// Contains reports whether id was requested by the batch.
func (b *Batch) Contains(id string) bool {
	return slices.ContainsFunc(b.aliases, func(a string) bool { return b.ids[a] == id })
}

func renameSelections(set ast.SelectionSet, from, to string) {
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			renameArguments(s.Arguments, from, to)
			renameDirectives(s.Directives, from, to)
			renameSelections(s.SelectionSet, from, to)
		case *ast.InlineFragment:
			renameDirectives(s.Directives, from, to)
			renameSelections(s.SelectionSet, from, to)
		case *ast.FragmentSpread:
			renameDirectives(s.Directives, from, to)
		}
	}
}

func renameDirectives(list ast.DirectiveList, from, to string) {
	for _, d := range list {
		renameArguments(d.Arguments, from, to)
	}
}

func renameArguments(list ast.ArgumentList, from, to string) {
	for _, a := range list {
		renameValue(a.Value, from, to)
	}
}

func renameValue(v *ast.Value, from, to string) {
	if v == nil {
		return
	}
	if v.Kind == ast.Variable && v.Raw == from {
		v.Raw = to
	}
	for _, c := range v.Children {
		renameValue(c.Value, from, to)
	}
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
