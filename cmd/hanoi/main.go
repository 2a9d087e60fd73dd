package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Config  string `short:"c" long:"config" default:"hanoi.json" description:"Configuration file (.json, .yaml or .yml)"`
	Verbose bool   `short:"v" long:"verbose" description:"Log every published command"`

	Setup  SetupCommand  `command:"setup" description:"Find the arm and calibrate it"`
	Pose   PoseCommand   `command:"pose" description:"Read the joints and print the end-effector pose"`
	Plan   PlanCommand   `command:"plan" description:"Print the waypoints of one or more cycles without moving"`
	Run    RunCommand    `command:"run" description:"Run the demonstration until disabled"`
	Enable EnableCommand `command:"enable" description:"Set the shared enable flag in Redis"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "hanoi - open-loop Towers of Hanoi choreography for SO-101 arms"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
