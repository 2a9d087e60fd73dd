package robot

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// StepsPerRevolution is the encoder resolution of the STS servos.
const StepsPerRevolution = 4096

// MotorCalibration holds calibration data for a single motor.
type MotorCalibration struct {
	ID           int `json:"id" yaml:"id"`
	DriveMode    int `json:"drive_mode" yaml:"drive_mode"`
	HomingOffset int `json:"homing_offset" yaml:"homing_offset"`
	RangeMin     int `json:"range_min" yaml:"range_min"`
	RangeMax     int `json:"range_max" yaml:"range_max"`
}

// Calibration holds calibration data for all motors, keyed by motor name.
type Calibration map[MotorName]MotorCalibration

// LoadCalibration loads calibration data from a JSON file.
func LoadCalibration(path string) (Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calibration file: %w", err)
	}

	var raw map[string]MotorCalibration
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse calibration JSON: %w", err)
	}

	cal := make(Calibration, len(raw))
	for name, mc := range raw {
		cal[MotorName(name)] = mc
	}

	return cal, nil
}

// Normalize converts a raw servo position to a normalized value in the range [-100, 100].
func (c MotorCalibration) Normalize(raw int) float64 {
	rangeSize := float64(c.RangeMax - c.RangeMin)
	if rangeSize == 0 {
		return 0
	}
	return (float64(raw-c.RangeMin)/rangeSize)*200 - 100
}

// Center returns the raw position that corresponds to a joint angle of zero:
// the middle of the recorded range, shifted by the homing offset.
func (c MotorCalibration) Center() int {
	return (c.RangeMin+c.RangeMax)/2 + c.HomingOffset
}

// AngleToRaw converts a joint angle in radians to a raw servo position,
// clamped to the recorded range. Drive mode 1 inverts the direction.
func (c MotorCalibration) AngleToRaw(rad float64) int {
	steps := rad / (2 * math.Pi) * StepsPerRevolution
	if c.DriveMode == 1 {
		steps = -steps
	}
	raw := c.Center() + int(math.Round(steps))
	return max(c.RangeMin, min(c.RangeMax, raw))
}

// RawToAngle converts a raw servo position to a joint angle in radians.
func (c MotorCalibration) RawToAngle(raw int) float64 {
	rad := float64(raw-c.Center()) / StepsPerRevolution * 2 * math.Pi
	if c.DriveMode == 1 {
		rad = -rad
	}
	return rad
}

// MotorIDs returns the servo IDs for all motors in the calibration.
func (c Calibration) MotorIDs() []int {
	ids := make([]int, 0, len(c))
	// Use AllMotors() to ensure consistent ordering
	for _, name := range AllMotors() {
		if mc, ok := c[name]; ok {
			ids = append(ids, mc.ID)
		}
	}
	return ids
}

// ByID returns motor name and calibration for a given servo ID.
func (c Calibration) ByID(id int) (MotorName, MotorCalibration, bool) {
	for name, mc := range c {
		if mc.ID == id {
			return name, mc, true
		}
	}
	return "", MotorCalibration{}, false
}
