// Package elevator is an Environment for an elevator car.
//
// The controller senses one pending-request bit per floor and
// drives four outputs: UP, DOWN, OPEN, and RING.  OPEN serves the
// current floor.  A car moves one floor per step, and never with
// its door open.
package elevator

import (
	"fmt"
	"os"

	"github.com/Comcast/fsmgrader/match"

	"gopkg.in/yaml.v2"
)

const NumOutputs = 4

// Output bit indexes.
const (
	Up = iota
	Down
	OpenDoor
	Ring
)

// Arrival is a request that shows up during a run.
type Arrival struct {
	// Step is the number of steps after which the request
	// appears.
	Step  int `yaml:"step" json:"step"`
	Floor int `yaml:"floor" json:"floor"`
}

// Building is an elevator scenario as written in a YAML file:
//
//	name: rush
//	floors: 3
//	start: 0
//	requests: [2, 1]
//	arrivals:
//	  - {step: 5, floor: 0}
type Building struct {
	Name     string    `yaml:"name" json:"name"`
	Floors   int       `yaml:"floors" json:"floors"`
	Start    int       `yaml:"start" json:"start"`
	Requests []int     `yaml:"requests" json:"requests"`
	Arrivals []Arrival `yaml:"arrivals,omitempty" json:"arrivals,omitempty"`
	Limit    int       `yaml:"limit,omitempty" json:"limit,omitempty"`
}

// ParseBuilding parses a YAML Building and checks it.
func ParseBuilding(bs []byte) (*Building, error) {
	var b Building
	if err := yaml.Unmarshal(bs, &b); err != nil {
		return nil, err
	}
	if err := b.Check(); err != nil {
		return nil, err
	}
	return &b, nil
}

// ReadBuilding reads a YAML Building from a file.
func ReadBuilding(filename string) (*Building, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	b, err := ParseBuilding(bs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return b, nil
}

// Check reports the first problem with the building's floors.
func (b *Building) Check() error {
	if b.Floors < 1 {
		return fmt.Errorf("building needs at least one floor (not %d)", b.Floors)
	}
	floor := func(f int) error {
		if f < 0 || b.Floors <= f {
			return fmt.Errorf("floor %d isn't in [0,%d)", f, b.Floors)
		}
		return nil
	}
	if err := floor(b.Start); err != nil {
		return err
	}
	for _, f := range b.Requests {
		if err := floor(f); err != nil {
			return err
		}
	}
	for _, a := range b.Arrivals {
		if err := floor(a.Floor); err != nil {
			return err
		}
	}
	return nil
}

// Car is an Environment.  Not safe for concurrent use.
type Car struct {
	Building *Building
	Floor    int
	Door     bool
	Pending  []bool
	Steps    int

	// Served lists the floors served in order.
	Served []int

	// Overruns counts attempts to move past the top or bottom.
	Overruns int

	// Violations counts attempts to move with the door open or
	// in both directions at once.
	Violations int

	Rings int
}

// NewCar makes a car at the building's starting floor.
func NewCar(b *Building) (*Car, error) {
	if err := b.Check(); err != nil {
		return nil, err
	}
	c := &Car{
		Building: b,
		Floor:    b.Start,
		Pending:  make([]bool, b.Floors),
	}
	for _, f := range b.Requests {
		c.Pending[f] = true
	}
	c.arrive()
	return c, nil
}

func (c *Car) Widths() (int, int) {
	return c.Building.Floors, NumOutputs
}

func (c *Car) arrive() {
	for _, a := range c.Building.Arrivals {
		if a.Step == c.Steps {
			c.Pending[a.Floor] = true
		}
	}
}

func (c *Car) ReadInputs() match.Bits {
	return match.Bits(c.Pending).Copy()
}

func (c *Car) ApplyOutputs(bs match.Bits) {
	if len(bs) != NumOutputs {
		return
	}
	c.Steps++
	defer c.arrive()

	if bs[Ring] {
		c.Rings++
	}

	c.Door = bs[OpenDoor]
	if c.Door && c.Pending[c.Floor] {
		c.Pending[c.Floor] = false
		c.Served = append(c.Served, c.Floor)
	}

	var dir int
	switch {
	case bs[Up] && bs[Down]:
		c.Violations++
		return
	case bs[Up]:
		dir = 1
	case bs[Down]:
		dir = -1
	default:
		return
	}
	if c.Door {
		c.Violations++
		return
	}
	to := c.Floor + dir
	if to < 0 || c.Building.Floors <= to {
		c.Overruns++
		return
	}
	c.Floor = to
}

// IsGoalReached reports whether every request, including the ones
// still to arrive, has been served.
func (c *Car) IsGoalReached() bool {
	for _, a := range c.Building.Arrivals {
		if c.Steps < a.Step {
			return false
		}
	}
	for _, p := range c.Pending {
		if p {
			return false
		}
	}
	return true
}
