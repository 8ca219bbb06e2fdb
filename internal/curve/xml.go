package curve

import (
	"encoding/xml"
	"fmt"
	"math"
)

// Serialized schema of one response curve:
//
//	<response-curve mode="diagonal">
//	  <mapping type="cubic-bezier-spline">
//	    <control-point x="-1" y="-1"/>
//	    ...
//	  </mapping>
//	  <deadzone low="-1" center-low="0" center-high="0" high="1"/>
//	</response-curve>
//
// Control points are stored flattened in x-sorted order, with the Bézier
// endpoint handles collapsed to a single coordinate each.

type xmlControlPoint struct {
	X float64 `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
}

type xmlMapping struct {
	Type   string            `xml:"type,attr"`
	Points []xmlControlPoint `xml:"control-point"`
}

type xmlDeadzone struct {
	Low        *float64 `xml:"low,attr"`
	CenterLow  *float64 `xml:"center-low,attr"`
	CenterHigh *float64 `xml:"center-high,attr"`
	High       *float64 `xml:"high,attr"`
}

type xmlResponseCurve struct {
	XMLName  xml.Name     `xml:"response-curve"`
	Mode     string       `xml:"mode,attr"`
	Mapping  xmlMapping   `xml:"mapping"`
	Deadzone *xmlDeadzone `xml:"deadzone"`
}

// modelFromFlat rebuilds a model from the serialized flattened points.
// Identifiers are assigned fresh; they are never persisted.
func modelFromFlat(kind Kind, flat []Point) (*Model, error) {
	switch kind {
	case KindCubic:
		if len(flat) < 2 {
			return nil, fmt.Errorf("cubic mapping with %d points: %w", len(flat), ErrInsufficientPoints)
		}
		m := &Model{kind: KindCubic}
		for _, p := range flat {
			if m.duplicateX(p.X, 0) {
				return nil, fmt.Errorf("duplicate x %g: %w", p.X, ErrInvalidPoint)
			}
			m.addRaw(p, nil)
		}
		return m, nil
	case KindBezier:
		if len(flat) < 4 {
			return nil, fmt.Errorf("bezier mapping with %d points: %w", len(flat), ErrInsufficientPoints)
		}
		if (len(flat)-4)%3 != 0 {
			return nil, fmt.Errorf("bezier mapping with %d points is misaligned: %w", len(flat), ErrInvalidPoint)
		}
		m := &Model{kind: KindBezier}
		m.addRaw(flat[0], []Point{flat[1]})
		i := 2
		for ; i+2 < len(flat)-1; i += 3 {
			m.addRaw(flat[i+1], []Point{flat[i], flat[i+2]})
		}
		m.addRaw(flat[len(flat)-1], []Point{flat[len(flat)-2]})
		return m, nil
	default:
		return nil, fmt.Errorf("kind %d: %w", kind, ErrInvalidCurveType)
	}
}

// MarshalXML encodes the curve as a response-curve element.
func (a *AxisCurve) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	var pts []xmlControlPoint
	switch a.model.kind {
	case KindCubic:
		for _, p := range a.model.sortedByX() {
			pts = append(pts, xmlControlPoint{X: p.center.X, Y: p.center.Y})
		}
	case KindBezier:
		for _, p := range a.model.Flatten() {
			pts = append(pts, xmlControlPoint{X: p.X, Y: p.Y})
		}
	}
	d := a.deadzone
	doc := xmlResponseCurve{
		Mode: a.model.symmetry.String(),
		Mapping: xmlMapping{
			Type:   a.model.kind.String(),
			Points: pts,
		},
		Deadzone: &xmlDeadzone{
			Low:        &d.Low,
			CenterLow:  &d.CenterLow,
			CenterHigh: &d.CenterHigh,
			High:       &d.High,
		},
	}
	start.Name = xml.Name{Local: "response-curve"}
	return e.EncodeElement(doc, start)
}

// UnmarshalXML decodes a response-curve element. Missing attributes fall
// back to defaults; a mapping with too few points falls back to the preset
// model of its kind; an unknown mapping type is a corrupt-profile
// condition and fails the decode.
func (a *AxisCurve) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	var doc xmlResponseCurve
	if err := dec.DecodeElement(&doc, &start); err != nil {
		return err
	}

	kind, err := ParseKind(doc.Mapping.Type)
	if err != nil {
		return err
	}

	flat := make([]Point, len(doc.Mapping.Points))
	for i, p := range doc.Mapping.Points {
		flat[i] = Pt(clampCoord(p.X), clampCoord(p.Y))
	}

	model, err := modelFromFlat(kind, flat)
	if err != nil {
		// Degraded data keeps the profile loadable with the preset curve.
		model, _ = NewModel(kind)
	}
	model.symmetry = ParseSymmetryMode(doc.Mode)

	dz := DefaultDeadzone()
	if doc.Deadzone != nil {
		if doc.Deadzone.Low != nil {
			dz.Low = *doc.Deadzone.Low
		}
		if doc.Deadzone.CenterLow != nil {
			dz.CenterLow = *doc.Deadzone.CenterLow
		}
		if doc.Deadzone.CenterHigh != nil {
			dz.CenterHigh = *doc.Deadzone.CenterHigh
		}
		if doc.Deadzone.High != nil {
			dz.High = *doc.Deadzone.High
		}
	}

	a.model = model
	a.model.OnChange(a.onModelChange)
	a.SetDeadzone(dz)
	return nil
}

func clampCoord(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return clamp(v, -1, 1)
}
