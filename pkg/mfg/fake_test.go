package mfg

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"golang.org/x/oauth2"

	"github.com/matzehuels/fusiongraph/pkg/graphql"
)

// fakeAPI answers the documents of this package from an in-memory design.
// Every request is parsed with gqlparser so batched documents are answered
// alias by alias, the way the server does.
type fakeAPI struct {
	key   LookupKey
	root  string
	nodes map[string]fakeNode

	notDesign     bool // the component item is not a design
	pageSize      int  // allOccurrences page size, 0 = single page
	childPageSize int  // occurrences page size, 0 = single page
	emptyCursor   bool // end pagination with "" instead of null

	statuses []string // consumed by status polls, last one repeats
	fileURL  string
	webhooks []Webhook

	// tamper may rewrite the data of any response before it is returned.
	tamper func(op string, data map[string]any)

	calls    []string
	requests []*graphql.Request
}

type fakeNode struct {
	name     string
	children []string
}

func newFakeAPI(root string, nodes map[string]fakeNode) *fakeAPI {
	return &fakeAPI{
		key:   LookupKey{Hub: "Acme", Project: "Bikes", Component: "Frame"},
		root:  root,
		nodes: nodes,
	}
}

// Token makes fakeAPI a tokenSource so downloads carry credentials.
func (f *fakeAPI) Token() (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "fake-token", TokenType: "Bearer"}, nil
}

func (f *fakeAPI) Do(_ context.Context, req *graphql.Request, out any) error {
	f.calls = append(f.calls, req.OperationName)
	f.requests = append(f.requests, req)

	doc, err := parser.ParseQuery(&ast.Source{Input: req.Query})
	if err != nil {
		return fmt.Errorf("fake: invalid document: %w", err)
	}
	op := doc.Operations[0]

	var data map[string]any
	switch op.Name {
	case "GetModelHierarchy":
		data = f.lookup(req.Variables, func() any {
			return map[string]any{"id": f.root, "name": f.nodes[f.root].name, "allOccurrences": f.occurrencePage(0)}
		})
	case "GetModelHierarchyPage":
		offset, _ := strconv.Atoi(fmt.Sprint(req.Variables["cursor"]))
		data = map[string]any{"componentVersion": map[string]any{
			"id":             req.Variables["componentVersionId"],
			"allOccurrences": f.occurrencePage(offset),
		}}
	case "GetRootComponentVersion":
		data = f.lookup(req.Variables, func() any { return f.node(f.root, 0) })
	case "GetComponentVersions":
		data = make(map[string]any)
		for _, sel := range op.SelectionSet {
			field := sel.(*ast.Field)
			arg := field.Arguments.ForName("componentVersionId")
			id := fmt.Sprint(req.Variables[arg.Value.Raw])
			if _, ok := f.nodes[id]; ok {
				data[field.Alias] = f.node(id, 0)
			} else {
				data[field.Alias] = nil
			}
		}
	case "GetOccurrencesPage":
		id := fmt.Sprint(req.Variables["componentVersionId"])
		offset, _ := strconv.Atoi(fmt.Sprint(req.Variables["cursor"]))
		n := f.node(id, offset)
		data = map[string]any{"componentVersion": map[string]any{"id": id, "occurrences": n["occurrences"]}}
	case "GetThumbnail":
		data = f.lookup(req.Variables, func() any {
			return map[string]any{"id": f.root, "name": "Frame", "thumbnail": map[string]any{
				"status": f.nextStatus(), "signedUrl": f.fileURL,
			}}
		})
	case "GetGeometry":
		data = f.lookup(req.Variables, func() any {
			return map[string]any{"id": f.root, "name": "Frame", "derivatives": []any{map[string]any{
				"status": f.nextStatus(), "signedUrl": f.fileURL, "progress": "50%",
				"outputFormat": req.Variables["outputFormat"],
			}}}
		})
	case "GetPhysicalProperties":
		data = f.lookup(req.Variables, func() any {
			return map[string]any{"id": f.root, "name": "Frame", "physicalProperties": fakeProperties(f.nextStatus())}
		})
	case "GetComponent":
		data = f.lookup(req.Variables, func() any { return map[string]any{"id": f.root, "name": "Frame"} })
	case "GetWebhooks":
		data = map[string]any{"webhooks": map[string]any{"results": f.webhooks}}
	case "CreateWebhook":
		input := req.Variables["input"].(map[string]any)
		wh := Webhook{
			ID:          fmt.Sprintf("wh-%d", len(f.webhooks)+1),
			EventType:   fmt.Sprint(input["eventType"]),
			CallbackURL: fmt.Sprint(input["callbackUrl"]),
			Status:      "ACTIVE",
		}
		f.webhooks = append(f.webhooks, wh)
		data = map[string]any{"createWebhook": map[string]any{"webhook": wh}}
	case "DeleteWebhook":
		id := req.Variables["webhookId"]
		for i, wh := range f.webhooks {
			if wh.ID == id {
				f.webhooks = append(f.webhooks[:i], f.webhooks[i+1:]...)
				break
			}
		}
		data = map[string]any{"deleteWebhook": map[string]any{"id": id}}
	default:
		return fmt.Errorf("fake: unexpected operation %q", op.Name)
	}

	if f.tamper != nil {
		f.tamper(op.Name, data)
	}
	if out == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (f *fakeAPI) lookup(vars map[string]any, tip func() any) map[string]any {
	empty := map[string]any{"results": []any{}}
	if vars["hubName"] != f.key.Hub {
		return map[string]any{"hubs": empty}
	}
	projects := empty
	if vars["projectName"] == f.key.Project {
		items := empty
		if vars["componentName"] == f.key.Component {
			item := map[string]any{"id": "item-1", "name": f.key.Component}
			if !f.notDesign {
				item["tipRootComponentVersion"] = tip()
			}
			items = map[string]any{"results": []any{item}}
		}
		projects = map[string]any{"results": []any{
			map[string]any{"id": "project-1", "name": f.key.Project, "items": items},
		}}
	}
	return map[string]any{"hubs": map[string]any{"results": []any{
		map[string]any{"id": "hub-1", "name": f.key.Hub, "projects": projects},
	}}}
}

// edges lists every parent/child pair reachable from the root, visiting
// each parent once.
func (f *fakeAPI) edges() [][2]string {
	var out [][2]string
	seen := map[string]bool{f.root: true}
	queue := []string{f.root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range f.nodes[id].children {
			out = append(out, [2]string{id, c})
			if !seen[c] {
				seen[c] = true
				queue = append(queue, c)
			}
		}
	}
	return out
}

func (f *fakeAPI) occurrencePage(offset int) map[string]any {
	edges := f.edges()
	end := len(edges)
	if f.pageSize > 0 {
		end = min(offset+f.pageSize, len(edges))
	}
	results := make([]any, 0, end-offset)
	for _, e := range edges[offset:end] {
		results = append(results, map[string]any{
			"parentComponentVersion": map[string]any{"id": e[0]},
			"componentVersion":       map[string]any{"id": e[1], "name": f.nodes[e[1]].name},
		})
	}
	return map[string]any{"results": results, "pagination": f.cursor(end, len(edges))}
}

func (f *fakeAPI) node(id string, offset int) map[string]any {
	n := f.nodes[id]
	end := len(n.children)
	if f.childPageSize > 0 {
		end = min(offset+f.childPageSize, len(n.children))
	}
	results := make([]any, 0, end-offset)
	for _, c := range n.children[offset:end] {
		results = append(results, map[string]any{"componentVersion": map[string]any{"id": c, "name": f.nodes[c].name}})
	}
	return map[string]any{
		"id":          id,
		"name":        n.name,
		"occurrences": map[string]any{"results": results, "pagination": f.cursor(end, len(n.children))},
	}
}

func (f *fakeAPI) cursor(next, total int) map[string]any {
	if next < total {
		return map[string]any{"cursor": strconv.Itoa(next)}
	}
	if f.emptyCursor {
		return map[string]any{"cursor": ""}
	}
	return map[string]any{"cursor": nil}
}

func (f *fakeAPI) nextStatus() string {
	if len(f.statuses) == 0 {
		return StatusSuccess
	}
	s := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return s
}

func (f *fakeAPI) count(op string) int {
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func fakeProperties(status string) map[string]any {
	m := func(display string, value float64, unit string) map[string]any {
		return map[string]any{
			"displayValue": display,
			"value":        value,
			"definition":   map[string]any{"units": map[string]any{"name": unit}},
		}
	}
	return map[string]any{
		"status":  status,
		"area":    m("120.5 cm^2", 120.5, "cm^2"),
		"volume":  m("42 cm^3", 42, "cm^3"),
		"mass":    m("0.33 kg", 0.33, "kg"),
		"density": m("7.85 g/cm^3", 7.85, "g/cm^3"),
		"boundingBox": map[string]any{
			"length": m("10 cm", 10, "cm"),
			"width":  m("4 cm", 4, "cm"),
			"height": m("2 cm", 2, "cm"),
		},
	}
}

// diamond is A -> {B, C}, B -> D, C -> D.
func diamond() map[string]fakeNode {
	return map[string]fakeNode{
		"A": {name: "Assembly", children: []string{"B", "C"}},
		"B": {name: "Left", children: []string{"D"}},
		"C": {name: "Right", children: []string{"D"}},
		"D": {name: "Bolt"},
	}
}

// balanced returns a tree of the given depth where every inner node has
// width children. The root is "r".
func balanced(depth, width int) map[string]fakeNode {
	nodes := make(map[string]fakeNode)
	var build func(id string, level int)
	build = func(id string, level int) {
		n := fakeNode{name: "part " + id}
		if level < depth {
			for i := range width {
				c := fmt.Sprintf("%s.%d", id, i)
				n.children = append(n.children, c)
				build(c, level+1)
			}
		}
		nodes[id] = n
	}
	build("r", 0)
	return nodes
}

// failingQuerier fails every request for one operation.
type failingQuerier struct {
	inner  *fakeAPI
	failOn string
	err    error
}

func (q *failingQuerier) Do(ctx context.Context, req *graphql.Request, out any) error {
	if req.OperationName == q.failOn {
		return q.err
	}
	return q.inner.Do(ctx, req, out)
}
