package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/hanoiarm/pkg/choreo"
	"github.com/gwillem/hanoiarm/pkg/hanoi"
	"github.com/gwillem/hanoiarm/pkg/robot"
)

type PoseCommand struct{}

func (c *PoseCommand) Execute(args []string) error {
	cfg, found, err := loadConfig()
	if err != nil {
		return err
	}
	if !found || cfg.Arm.Port == "" || !cfg.Arm.IsCalibrated() {
		return fmt.Errorf("arm not configured, run 'hanoi setup' first")
	}

	arm, err := robot.NewArm(cfg.Arm.Port, cfg.Arm.Calibration)
	if err != nil {
		return err
	}
	defer arm.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	angles, err := arm.ReadJoints(ctx)
	if err != nil {
		return err
	}

	geo := cfg.Arm.Geometry
	pose := geo.Forward(geo.JointsOf(angles))

	rows := make([][]string, 0, len(angles))
	for _, name := range robot.AllMotors() {
		rad, ok := angles[name]
		if !ok {
			continue
		}
		rows = append(rows, []string{string(name), fmt.Sprintf("%+.3f", rad), fmt.Sprintf("%+.1f°", rad*180/math.Pi)})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Motor", "rad", "deg").
		Rows(rows...)
	fmt.Println(t.Render())
	fmt.Println()

	fmt.Printf("Pose:    x=%.3f y=%.3f z=%.3f roll=%.3f pitch=%.3f\n", pose.X, pose.Y, pose.Z, pose.Roll, pose.Pitch)
	if g, ok := angles[robot.Gripper]; ok && geo.GripperSpan > 0 {
		fmt.Printf("Gripper: %.3f m\n", g/geo.GripperSpan*geo.GripperMaxWidth)
	}

	peg, dist := nearestPeg(cfg.Choreography.PegCoordinates, pose.X, pose.Y)
	fmt.Printf("Nearest: peg %s (%.3f m away)\n", peg, dist)
	return nil
}

func nearestPeg(pegs [hanoi.NumPegs]choreo.Point, x, y float64) (hanoi.Peg, float64) {
	best, bestDist := hanoi.PegA, math.Inf(1)
	for _, p := range hanoi.AllPegs() {
		if d := math.Hypot(pegs[p].X-x, pegs[p].Y-y); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, bestDist
}
