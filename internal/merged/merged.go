// Package merged synthesizes one virtual axis from two calibrated
// hardware axes.
package merged

import (
	"encoding/xml"
	"errors"
	"fmt"
)

// ErrSelfMerge marks a configuration that merges an axis with itself.
// It is surfaced as a validity flag, not a crash: the configuration stays
// loaded but no live input handler is registered for it.
var ErrSelfMerge = errors.New("axis merged with itself")

// Operation selects how the two input values are combined.
type Operation int

const (
	Average Operation = iota
	Minimum
	Maximum
	Sum
)

func (o Operation) String() string {
	switch o {
	case Average:
		return "average"
	case Minimum:
		return "minimum"
	case Maximum:
		return "maximum"
	case Sum:
		return "sum"
	default:
		return "unknown"
	}
}

// ParseOperation parses the serialized operation name.
func ParseOperation(s string) (Operation, error) {
	switch s {
	case "average":
		return Average, nil
	case "minimum":
		return Minimum, nil
	case "maximum":
		return Maximum, nil
	case "sum":
		return Sum, nil
	default:
		return 0, fmt.Errorf("unknown merge operation %q", s)
	}
}

// AxisRef names one hardware axis of a merge pair.
type AxisRef struct {
	DeviceGUID string
	InputID    int
}

// Config describes one merged virtual axis.
type Config struct {
	Axis1        AxisRef
	Axis2        AxisRef
	Operation    Operation
	InvertOutput bool
}

// Validate reports whether the configuration can drive a live handler.
func (c Config) Validate() error {
	if c.Axis1 == c.Axis2 {
		return fmt.Errorf("%v: %w", c.Axis1, ErrSelfMerge)
	}
	return nil
}

// IsValid is the convenience form of Validate for the UI layer.
func (c Config) IsValid() bool {
	return c.Validate() == nil
}

// Value combines two calibrated axis values according to the config.
func (c Config) Value(v1, v2 float64) float64 {
	return Compute(c.Operation, v1, v2, c.InvertOutput)
}

// Compute combines two calibrated values in [-1, 1].
//
// Average subtracts rather than adds. Existing profile documents were
// tuned against that result, so changing it needs a format version bump.
func Compute(op Operation, v1, v2 float64, invert bool) float64 {
	var v float64
	switch op {
	case Average:
		v = (v1 - v2) / 2
	case Minimum:
		v = min(v1, v2)
	case Maximum:
		v = max(v1, v2)
	case Sum:
		v = clamp(v1+v2, -1, 1)
	}
	if invert {
		v = -v
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// entry element layout:
//
//	<entry operation="maximum" joy1_device_id="..." joy1_axis_id="1"
//	       joy2_device_id="..." joy2_axis_id="2" reverse="false"/>
type xmlEntry struct {
	Operation  string `xml:"operation,attr"`
	Joy1Device string `xml:"joy1_device_id,attr"`
	Joy1Axis   int    `xml:"joy1_axis_id,attr"`
	Joy2Device string `xml:"joy2_device_id,attr"`
	Joy2Axis   int    `xml:"joy2_axis_id,attr"`
	Reverse    bool   `xml:"reverse,attr"`
}

// MarshalXML encodes the configuration as an entry element.
func (c Config) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "entry"}
	return e.EncodeElement(xmlEntry{
		Operation:  c.Operation.String(),
		Joy1Device: c.Axis1.DeviceGUID,
		Joy1Axis:   c.Axis1.InputID,
		Joy2Device: c.Axis2.DeviceGUID,
		Joy2Axis:   c.Axis2.InputID,
		Reverse:    c.InvertOutput,
	}, start)
}

// UnmarshalXML decodes an entry element. An unknown operation name fails
// the decode; a self-merge does not, it is caught by Validate.
func (c *Config) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	var e xmlEntry
	if err := dec.DecodeElement(&e, &start); err != nil {
		return err
	}
	op, err := ParseOperation(e.Operation)
	if err != nil {
		return err
	}
	*c = Config{
		Axis1:        AxisRef{DeviceGUID: e.Joy1Device, InputID: e.Joy1Axis},
		Axis2:        AxisRef{DeviceGUID: e.Joy2Device, InputID: e.Joy2Axis},
		Operation:    op,
		InvertOutput: e.Reverse,
	}
	return nil
}
