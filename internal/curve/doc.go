// Package curve implements the editable response curve of a single axis:
// spline evaluation, the control point model with its symmetry and
// validity rules, and the deadzone transform composed in front of it.
package curve
