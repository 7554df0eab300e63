package render

import (
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/fusiongraph/pkg/errors"
	"github.com/matzehuels/fusiongraph/pkg/mfg"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Properties writes physical properties as a table, JSON or YAML.
func Properties(w io.Writer, p *mfg.PhysicalProperties, format Format) error {
	switch format {
	case FormatText, "":
		_, err := io.WriteString(w, PropertiesTable(p)+"\n")
		return err
	case FormatJSON:
		return writeJSON(w, p)
	case FormatYAML:
		return writeYAML(w, p)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported properties format %q", format)
	}
}

// PropertiesTable renders p as a two column table.
func PropertiesTable(p *mfg.PhysicalProperties) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("Property", "Value")

	t.Row("Component", p.Component)
	for _, r := range []struct {
		name string
		m    mfg.Measure
	}{
		{"Area", p.Area},
		{"Volume", p.Volume},
		{"Mass", p.Mass},
		{"Density", p.Density},
		{"Length", p.BoundingBox.Length},
		{"Width", p.BoundingBox.Width},
		{"Height", p.BoundingBox.Height},
	} {
		t.Row(r.name, measureText(r.m))
	}
	return t.String()
}

func measureText(m mfg.Measure) string {
	if m.DisplayValue != "" {
		return m.DisplayValue
	}
	if m.Unit == "" {
		return "-"
	}
	return strconv.FormatFloat(m.Value, 'g', -1, 64) + " " + m.Unit
}
