package robot

// ArmConfig holds the hardware settings for the arm.
type ArmConfig struct {
	Port        string      `json:"port" yaml:"port"`
	Calibration Calibration `json:"calibration,omitempty" yaml:"calibration,omitempty"`
	Geometry    Geometry    `json:"geometry" yaml:"geometry"`
}

// DefaultArmConfig returns an unconfigured arm with the default linkage.
func DefaultArmConfig() ArmConfig {
	return ArmConfig{Geometry: DefaultGeometry()}
}

// IsCalibrated returns true if the arm has calibration data
func (a *ArmConfig) IsCalibrated() bool {
	return len(a.Calibration) > 0
}
