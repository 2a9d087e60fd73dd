package choreo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gwillem/hanoiarm/pkg/hanoi"
)

// Duration is a time.Duration that reads "9s" style strings or plain
// seconds from config files.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText encodes the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts "1m30s" style strings or a number of seconds.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(bytes.TrimSpace(text))
	if parsed, err := time.ParseDuration(s); err == nil {
		*d = Duration(parsed)
		return nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

// MarshalJSON encodes the duration as a JSON string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return d.UnmarshalText([]byte(s))
	}
	return d.UnmarshalText(data)
}

// Point is a planar peg location in meters.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Config holds the rig constants: geometry, grip widths and the open-loop
// delay table. It is read once at startup.
type Config struct {
	// ApproachHeight is the safe hover height above every possible stack.
	ApproachHeight float64 `json:"approach_height" yaml:"approach_height"`
	// RestingOffsets is the thickness of each disk, indexed by disk id.
	RestingOffsets [hanoi.NumDisks]float64 `json:"resting_offsets" yaml:"resting_offsets"`
	// GripWidths is the closed aperture for each disk, indexed by disk id.
	GripWidths     [hanoi.NumDisks]float64 `json:"grip_widths" yaml:"grip_widths"`
	OpenWidth      float64                 `json:"open_width" yaml:"open_width"`
	PickClearance  float64                 `json:"pick_clearance" yaml:"pick_clearance"`
	PlaceClearance float64                 `json:"place_clearance" yaml:"place_clearance"`
	FloorHeight    float64                 `json:"floor_height" yaml:"floor_height"`

	Roll  float64 `json:"roll" yaml:"roll"`
	Pitch float64 `json:"pitch" yaml:"pitch"`

	PegCoordinates [hanoi.NumPegs]Point `json:"peg_coordinates" yaml:"peg_coordinates"`
	HomePeg        hanoi.Peg            `json:"home_peg" yaml:"home_peg"`
	Source         hanoi.Peg            `json:"source" yaml:"source"`
	Destination    hanoi.Peg            `json:"destination" yaml:"destination"`

	RotationDelay   Duration `json:"rotation_delay" yaml:"rotation_delay"`
	LiftDelay       Duration `json:"lift_delay" yaml:"lift_delay"`
	GripDelay       Duration `json:"grip_delay" yaml:"grip_delay"`
	InterCycleDelay Duration `json:"inter_cycle_delay" yaml:"inter_cycle_delay"`
	StartupDelay    Duration `json:"startup_delay" yaml:"startup_delay"`

	// HoldBetweenCycles keeps the last disk of a solve gripped through the
	// inter-cycle pause when the next solve starts by moving it again.
	HoldBetweenCycles bool `json:"hold_between_cycles" yaml:"hold_between_cycles"`
}

// DefaultConfig returns the constants of the reference rig.
func DefaultConfig() Config {
	return Config{
		ApproachHeight: 0.200,
		RestingOffsets: [hanoi.NumDisks]float64{0.040, 0.030, 0.020},
		GripWidths:     [hanoi.NumDisks]float64{0.038, 0.028, 0.018},
		OpenWidth:      0.065,
		PickClearance:  0.005,
		PlaceClearance: 0.010,
		Pitch:          math.Pi / 2,
		PegCoordinates: [hanoi.NumPegs]Point{
			{X: 0.000000, Y: 0.336000},
			{X: 0.237558, Y: 0.237558},
			{X: 0.336000, Y: 0.000000},
		},
		HomePeg:           hanoi.PegC,
		Source:            hanoi.PegA,
		Destination:       hanoi.PegC,
		RotationDelay:     Duration(9 * time.Second),
		LiftDelay:         Duration(5 * time.Second),
		GripDelay:         Duration(10 * time.Second),
		InterCycleDelay:   Duration(10 * time.Second),
		StartupDelay:      Duration(15 * time.Second),
		HoldBetweenCycles: true,
	}
}

// Validate checks that the constants describe a physically sensible rig.
func (c Config) Validate() error {
	var errs []error

	for _, p := range []hanoi.Peg{c.HomePeg, c.Source, c.Destination} {
		if !p.Valid() {
			errs = append(errs, fmt.Errorf("unknown peg %d", int(p)))
		}
	}
	if c.Source == c.Destination {
		errs = append(errs, errors.New("source and destination peg must differ"))
	}

	tallest := c.FloorHeight
	for d, thick := range c.RestingOffsets {
		if thick <= 0 {
			errs = append(errs, fmt.Errorf("disk %d: resting offset must be positive", d))
		}
		tallest += thick
	}
	if c.ApproachHeight <= tallest+max(c.PickClearance, c.PlaceClearance) {
		errs = append(errs, fmt.Errorf("approach height %.3f does not clear a full stack (%.3f)", c.ApproachHeight, tallest))
	}
	if c.PickClearance < 0 || c.PlaceClearance < 0 {
		errs = append(errs, errors.New("clearances must not be negative"))
	}

	for d, w := range c.GripWidths {
		if w <= 0 || w >= c.OpenWidth {
			errs = append(errs, fmt.Errorf("disk %d: grip width %.3f must be in (0, open width %.3f)", d, w, c.OpenWidth))
		}
		// larger disks (lower ids) need a wider grip
		if d > 0 && w >= c.GripWidths[d-1] {
			errs = append(errs, fmt.Errorf("disk %d: grip width %.3f must be narrower than disk %d", d, w, d-1))
		}
	}

	for i, a := range c.PegCoordinates {
		for _, b := range c.PegCoordinates[i+1:] {
			if a == b {
				errs = append(errs, fmt.Errorf("peg coordinates (%.3f, %.3f) used twice", a.X, a.Y))
			}
		}
	}

	for name, d := range map[string]Duration{
		"rotation_delay":    c.RotationDelay,
		"lift_delay":        c.LiftDelay,
		"grip_delay":        c.GripDelay,
		"inter_cycle_delay": c.InterCycleDelay,
		"startup_delay":     c.StartupDelay,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}

	return errors.Join(errs...)
}

// Travel returns how many peg slots the arm swings through between two pegs.
func (c Config) Travel(from, to hanoi.Peg) int {
	n := int(to) - int(from)
	if n < 0 {
		n = -n
	}
	return n
}

// DelayFor returns the settle time after a waypoint of the given phase.
// travel only matters for rotations.
func (c Config) DelayFor(p Phase, travel int) time.Duration {
	switch p.Category() {
	case CategoryRotation:
		return time.Duration(max(1, travel)) * c.RotationDelay.Std()
	case CategoryGrip:
		return c.GripDelay.Std()
	default:
		return c.LiftDelay.Std()
	}
}
