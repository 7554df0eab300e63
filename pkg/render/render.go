package render

import (
	"encoding/json"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/fusiongraph/pkg/errors"
	"github.com/matzehuels/fusiongraph/pkg/mfg"
)

// Format is an output format.
type Format string

const (
	FormatTree  Format = "tree"
	FormatPlain Format = "plain"
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatDOT   Format = "dot"
	FormatSVG   Format = "svg"
)

// HierarchyFormats lists the formats accepted by [Hierarchy].
var HierarchyFormats = []Format{FormatTree, FormatPlain, FormatJSON, FormatYAML, FormatDOT, FormatSVG}

// PropertyFormats lists the formats accepted by [Properties].
var PropertyFormats = []Format{FormatText, FormatJSON, FormatYAML}

// ParseFormat checks s against the allowed formats. An empty s selects the
// first allowed format.
func ParseFormat(s string, allowed []Format) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return allowed[0], nil
	}
	names := make([]string, len(allowed))
	for i, f := range allowed {
		if string(f) == s {
			return f, nil
		}
		names[i] = string(f)
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want %s)", s, strings.Join(names, ", "))
}

// Options controls hierarchy rendering.
type Options struct {
	// ShowIDs appends component version ids to labels.
	ShowIDs bool
	// Color styles tree output for a terminal.
	Color bool
}

// Hierarchy writes lines in the given format.
func Hierarchy(w io.Writer, lines []mfg.Line, format Format, opts Options) error {
	switch format {
	case FormatTree, "":
		_, err := io.WriteString(w, Tree(lines, opts)+"\n")
		return err
	case FormatPlain:
		return Plain(w, lines, opts)
	case FormatJSON:
		return writeJSON(w, Nest(lines))
	case FormatYAML:
		return writeYAML(w, Nest(lines))
	case FormatDOT:
		_, err := io.WriteString(w, ToDOT(lines, opts))
		return err
	case FormatSVG:
		svg, err := RenderSVG(ToDOT(lines, opts))
		if err != nil {
			return err
		}
		_, err = w.Write(svg)
		return err
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported hierarchy format %q", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func label(l mfg.Line, opts Options) string {
	name := l.Name
	if name == "" {
		name = l.ID
	}
	if opts.ShowIDs && name != l.ID {
		return name + " (" + l.ID + ")"
	}
	return name
}
