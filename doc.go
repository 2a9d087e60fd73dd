// Package hanoiarm solves a three-disk Towers of Hanoi puzzle with an SO-101
// robot arm, back and forth, until told to stop.
//
// The arm runs open loop: every disk relocation expands into eight waypoints
// published to a target-pose channel and a gripper channel, each followed by
// a fixed settle delay. Nothing is read back while the demonstration runs.
//
// # Installation
//
//	go install github.com/gwillem/hanoiarm/cmd/hanoi@latest
//
// # Usage
//
// Find and calibrate the arm:
//
//	hanoi setup
//
// Preview one solve without moving anything:
//
//	hanoi plan
//
// Then start the demonstration:
//
//	hanoi run
//
// Commands can also go out over Redis pub/sub (--backend redis) for an
// external arm driver, and the enable flag can live in Redis (--enable redis)
// so another process decides when the arm stops.
//
// # Packages
//
//   - cmd/hanoi: CLI with setup, pose, plan, run and enable commands
//   - pkg/hanoi: pegs, disks, stack state and the recursive solver
//   - pkg/choreo: waypoint expansion, choreography engine and control loop
//   - pkg/actuator: publishers for the arm, Redis and in-memory recording
//   - pkg/enable: in-process and Redis enable flags
//   - pkg/robot: servo bus, calibration and kinematics
//   - pkg/config: the configuration file
//   - internal/telemetry: Prometheus metrics and the status endpoint
package hanoiarm
