package mfg

import (
	"context"

	"github.com/matzehuels/fusiongraph/pkg/errors"
)

// Measure is one physical quantity with its unit.
type Measure struct {
	DisplayValue string  `json:"display_value" yaml:"display_value"`
	Value        float64 `json:"value" yaml:"value"`
	Unit         string  `json:"unit" yaml:"unit"`
}

// BoundingBox is the extent of a component version.
type BoundingBox struct {
	Length Measure `json:"length" yaml:"length"`
	Width  Measure `json:"width" yaml:"width"`
	Height Measure `json:"height" yaml:"height"`
}

// PhysicalProperties are the computed properties of a component version.
type PhysicalProperties struct {
	Component   string      `json:"component" yaml:"component"`
	Area        Measure     `json:"area" yaml:"area"`
	Volume      Measure     `json:"volume" yaml:"volume"`
	Mass        Measure     `json:"mass" yaml:"mass"`
	Density     Measure     `json:"density" yaml:"density"`
	BoundingBox BoundingBox `json:"bounding_box" yaml:"bounding_box"`
}

type measureResult struct {
	DisplayValue string   `json:"displayValue"`
	Value        *float64 `json:"value"`
	Definition   *struct {
		Units *struct {
			Name string `json:"name"`
		} `json:"units"`
	} `json:"definition"`
}

func (m *measureResult) measure() Measure {
	if m == nil {
		return Measure{}
	}
	out := Measure{DisplayValue: m.DisplayValue}
	if m.Value != nil {
		out.Value = *m.Value
	}
	if m.Definition != nil && m.Definition.Units != nil {
		out.Unit = m.Definition.Units.Name
	}
	return out
}

type propertiesResult struct {
	Status      string         `json:"status"`
	Area        *measureResult `json:"area"`
	Volume      *measureResult `json:"volume"`
	Mass        *measureResult `json:"mass"`
	Density     *measureResult `json:"density"`
	BoundingBox *struct {
		Length *measureResult `json:"length"`
		Width  *measureResult `json:"width"`
		Height *measureResult `json:"height"`
	} `json:"boundingBox"`
}

type propertiesRoot struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	PhysicalProperties *propertiesResult `json:"physicalProperties"`
}

// PhysicalProperties waits until the physical properties of the design are
// computed. Completed results are cached.
func (c *Client) PhysicalProperties(ctx context.Context, key LookupKey, refresh bool) (*PhysicalProperties, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	var props PhysicalProperties
	cacheKey, err := c.versionKey(ctx, key, func(id ComponentVersionID) string {
		return c.keyer.VersionKey("properties", id)
	})
	if err != nil {
		return nil, err
	}
	err = c.cached(ctx, "properties", cacheKey, refresh, &props, func() error {
		return poll(ctx, c.interval, func() (bool, error) {
			res, err := lookup[propertiesRoot](ctx, c.q, key, physicalPropertiesQuery.Request)
			if err != nil {
				return false, err
			}
			p := res.Root.PhysicalProperties
			if p == nil {
				return false, malformed(physicalPropertiesQuery.Name(), "physicalProperties")
			}
			switch p.Status {
			case StatusCompleted:
				props = p.convert(res.Root.Name)
				return true, nil
			case StatusFailed:
				return false, errors.New(errors.ErrCodeProcessingFailed, "physical properties failed for %s", key)
			default:
				c.logger("computing physical properties", "status", p.Status)
				return false, nil
			}
		})
	})
	if err != nil {
		return nil, err
	}
	return &props, nil
}

func (p *propertiesResult) convert(name string) PhysicalProperties {
	out := PhysicalProperties{
		Component: name,
		Area:      p.Area.measure(),
		Volume:    p.Volume.measure(),
		Mass:      p.Mass.measure(),
		Density:   p.Density.measure(),
	}
	if bb := p.BoundingBox; bb != nil {
		out.BoundingBox = BoundingBox{
			Length: bb.Length.measure(),
			Width:  bb.Width.measure(),
			Height: bb.Height.measure(),
		}
	}
	return out
}
