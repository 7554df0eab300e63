package mfg

import (
	"strings"

	"github.com/matzehuels/fusiongraph/pkg/errors"
)

// ComponentVersionID identifies one version of one component.
type ComponentVersionID = string

// ComponentVersion is a node of a model hierarchy. Children is only
// meaningful once Expanded is true; an unexpanded entry is a placeholder
// whose own children have not been queried yet.
type ComponentVersion struct {
	ID       ComponentVersionID   `json:"id" yaml:"id"`
	Name     string               `json:"name" yaml:"name"`
	Children []ComponentVersionID `json:"children,omitempty" yaml:"children,omitempty"`
	Expanded bool                 `json:"expanded" yaml:"expanded"`
}

// Occurrence places a child component version under a parent. The same
// parent and child may appear more than once.
type Occurrence struct {
	ParentID  ComponentVersionID `json:"parent_id" yaml:"parent_id"`
	ChildID   ComponentVersionID `json:"child_id" yaml:"child_id"`
	ChildName string             `json:"child_name" yaml:"child_name"`
}

// LookupKey names a design by hub, project and component.
type LookupKey struct {
	Hub       string `json:"hub"`
	Project   string `json:"project"`
	Component string `json:"component"`
}

// Validate checks that every part of the key is a usable name.
func (k LookupKey) Validate() error {
	for _, part := range []struct{ kind, name string }{
		{"hub", k.Hub},
		{"project", k.Project},
		{"component", k.Component},
	} {
		if err := errors.ValidateName(part.kind, part.name); err != nil {
			return err
		}
	}
	return nil
}

func (k LookupKey) String() string {
	return strings.Join([]string{k.Hub, k.Project, k.Component}, " / ")
}

func (k LookupKey) variables() map[string]any {
	return map[string]any{
		"hubName":       k.Hub,
		"projectName":   k.Project,
		"componentName": k.Component,
	}
}

// Mode selects how a hierarchy is assembled.
type Mode string

const (
	// ModeFlat pages through every occurrence below the root.
	ModeFlat Mode = "flat"
	// ModeLazy expands the tree level by level with batched requests.
	ModeLazy Mode = "lazy"
)

// ParseMode converts a flag value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeFlat, ModeLazy:
		return m, nil
	case "":
		return ModeFlat, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown hierarchy mode %q (want flat or lazy)", s)
	}
}
