package graphql

import (
	"strings"
	"testing"

	"github.com/matzehuels/fusiongraph/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr bool
	}{
		{"named query", `query A { a }`, false},
		{"named mutation", `mutation B($x: ID!) { b(id: $x) { id } }`, false},
		{"anonymous", `{ a }`, true},
		{"two operations", `query A { a } query B { b }`, true},
		{"syntax error", `query A { a `, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("code = %s, want INVALID_INPUT", errors.GetCode(err))
			}
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse should panic on invalid input")
		}
	}()
	MustParse(`{`)
}

func TestDocumentRequest(t *testing.T) {
	d := MustParse(`mutation  Delete($id: ID!) {deleteWebhook(webhookId: $id) {id}}`)
	if d.Name() != "Delete" || !d.Mutation() {
		t.Errorf("Name() = %q, Mutation() = %v", d.Name(), d.Mutation())
	}

	vars := map[string]any{"id": "w1"}
	req := d.Request(vars)
	vars["id"] = "changed"

	if req.Variables["id"] != "w1" {
		t.Error("Request should copy variables")
	}
	if !req.Mutation() || req.OperationName != "Delete" {
		t.Errorf("request = %+v", req)
	}
	if !strings.Contains(req.Query, "deleteWebhook(webhookId: $id)") {
		t.Errorf("normalized query = %q", req.Query)
	}
}
