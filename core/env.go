package core

import "github.com/Comcast/fsmgrader/match"

// Environment is what a Machine drives.
//
// The Machine never looks inside an Environment.  It reads the
// sensors, finds the row, hands the output bits back, and then asks
// whether the goal has been reached.  What the bits mean (turn left,
// open the door, drop a breadcrumb) is the Environment's business.
type Environment interface {
	// ReadInputs returns the current sensor bits.  The width is
	// fixed per Environment and must agree with the Table.
	ReadInputs() match.Bits

	// ApplyOutputs performs the actions indicated by the bits.
	ApplyOutputs(outputs match.Bits)

	// IsGoalReached is checked after each step.
	IsGoalReached() bool
}

// Widths is optionally implemented by an Environment to declare the
// table shape it needs.
type Widths interface {
	Widths() (ninputs, noutputs int)
}
