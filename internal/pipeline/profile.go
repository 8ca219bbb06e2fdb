package pipeline

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/muchimi/axispipe/internal/curve"
	"github.com/muchimi/axispipe/internal/merged"
)

// AxisEntry binds one response curve to a hardware axis.
type AxisEntry struct {
	DeviceGUID string
	InputID    int
	Curve      *curve.AxisCurve
}

// Profile is the loaded per-session configuration: response curves per
// input plus merged axis definitions.
type Profile struct {
	Axes   []AxisEntry
	Merged []merged.Config
}

type xmlAxis struct {
	DeviceGUID string           `xml:"device-guid,attr"`
	InputID    int              `xml:"input-id,attr"`
	Curve      *curve.AxisCurve `xml:"response-curve"`
}

type xmlProfile struct {
	XMLName xml.Name        `xml:"profile"`
	Axes    []xmlAxis       `xml:"axis"`
	Merged  []merged.Config `xml:"merged-axes>entry"`
}

// LoadProfile reads a profile document. Axes without a usable device guid
// are skipped, the same way stale calibration entries are.
func LoadProfile(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc xmlProfile
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	p := &Profile{Merged: doc.Merged}
	for _, a := range doc.Axes {
		if a.DeviceGUID == "" || a.DeviceGUID == "None" || a.Curve == nil {
			continue
		}
		p.Axes = append(p.Axes, AxisEntry{
			DeviceGUID: a.DeviceGUID,
			InputID:    a.InputID,
			Curve:      a.Curve,
		})
	}
	return p, nil
}

// SaveProfile writes the profile document.
func SaveProfile(path string, p *Profile) error {
	doc := xmlProfile{Merged: p.Merged}
	for _, a := range p.Axes {
		doc.Axes = append(doc.Axes, xmlAxis{
			DeviceGUID: a.DeviceGUID,
			InputID:    a.InputID,
			Curve:      a.Curve,
		})
	}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	out = append([]byte(xml.Header), out...)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
