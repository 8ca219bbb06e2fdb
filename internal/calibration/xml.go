package calibration

import (
	"encoding/xml"
	"fmt"
	"os"
	"sort"

	"github.com/muchimi/axispipe/internal/curve"
)

// calibration.xml layout: one calibration element per axis under a single
// root. Deadzone and centered attributes are absent in files written by
// old releases, which only stored the three raw range values; those
// entries are migrated to the current layout on load.

type xmlCalibration struct {
	DeviceGUID        string   `xml:"device-guid,attr"`
	InputID           int      `xml:"input-id,attr"`
	Inverted          bool     `xml:"inverted,attr"`
	Centered          *bool    `xml:"centered,attr"`
	CalibrateMin      float64  `xml:"calibrate-min,attr"`
	CalibrateMax      float64  `xml:"calibrate-max,attr"`
	CalibrateCenter   *float64 `xml:"calibrate-center,attr,omitempty"`
	DeadzoneMin       *float64 `xml:"deadzone-min,attr,omitempty"`
	DeadzoneMax       *float64 `xml:"deadzone-max,attr,omitempty"`
	DeadzoneCenterMin *float64 `xml:"deadzone-center-min,attr,omitempty"`
	DeadzoneCenterMax *float64 `xml:"deadzone-center-max,attr,omitempty"`
}

type xmlCalibrationFile struct {
	XMLName xml.Name         `xml:"calibrations"`
	Entries []xmlCalibration `xml:"calibration"`
}

// Load reads the calibration file. A missing file is not an error; the
// registry simply starts empty. Entries without a usable device guid are
// skipped.
func (m *Manager) Load() error {
	raw, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", m.path, err)
	}

	var file xmlCalibrationFile
	if err := xml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse %s: %w", m.path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range file.Entries {
		if e.DeviceGUID == "" || e.DeviceGUID == "None" {
			continue
		}
		d := New()
		d.inverted = e.Inverted

		// Legacy 3-value entries have no centered attribute: they were
		// always written for centered axes.
		if e.Centered != nil {
			d.centered = *e.Centered
		}

		center := d.center
		if e.CalibrateCenter != nil {
			center = *e.CalibrateCenter
		}
		d.SetRange(e.CalibrateMin, center, e.CalibrateMax)

		dz := curve.DefaultDeadzone()
		if e.DeadzoneMin != nil {
			dz.Low = *e.DeadzoneMin
		}
		if e.DeadzoneMax != nil {
			dz.High = *e.DeadzoneMax
		}
		if e.DeadzoneCenterMin != nil {
			dz.CenterLow = *e.DeadzoneCenterMin
		}
		if e.DeadzoneCenterMax != nil {
			dz.CenterHigh = *e.DeadzoneCenterMax
		}
		d.SetDeadzone(dz)

		m.entries[Key{DeviceGUID: e.DeviceGUID, InputID: e.InputID}] = d
	}
	return nil
}

// Save writes every calibration that deviates from identity defaults.
func (m *Manager) Save() error {
	m.mu.Lock()
	var file xmlCalibrationFile
	for key, d := range m.entries {
		if !d.HasData() {
			continue
		}
		centered := d.centered
		e := xmlCalibration{
			DeviceGUID:   key.DeviceGUID,
			InputID:      key.InputID,
			Inverted:     d.inverted,
			Centered:     &centered,
			CalibrateMin: d.min,
			CalibrateMax: d.max,
			DeadzoneMin:  ptr(d.deadzone.Low),
			DeadzoneMax:  ptr(d.deadzone.High),
		}
		if centered {
			e.CalibrateCenter = ptr(d.center)
			e.DeadzoneCenterMin = ptr(d.deadzone.CenterLow)
			e.DeadzoneCenterMax = ptr(d.deadzone.CenterHigh)
		}
		file.Entries = append(file.Entries, e)
	}
	m.mu.Unlock()

	sort.Slice(file.Entries, func(i, j int) bool {
		a, b := file.Entries[i], file.Entries[j]
		if a.DeviceGUID != b.DeviceGUID {
			return a.DeviceGUID < b.DeviceGUID
		}
		return a.InputID < b.InputID
	})

	out, err := xml.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal calibration: %w", err)
	}
	out = append([]byte(xml.Header), out...)
	if err := os.WriteFile(m.path, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", m.path, err)
	}
	return nil
}

func ptr(v float64) *float64 { return &v }
