package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hipsterbrown/feetech-servo/feetech"

	"github.com/gwillem/hanoiarm/pkg/robot"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type SetupCommand struct {
	Port string `long:"port" description:"Serial port of the arm (skips scanning)"`
}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Hanoi Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━"))
	fmt.Println()

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	port := c.Port
	if port == "" {
		port = scanForArm()
	}
	if port == "" {
		fmt.Println("No arm selected.")
		os.Exit(1)
	}
	cfg.Arm.Port = port

	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Calibrating Arm ━━━"))
	fmt.Println()
	cal, err := calibrateArm(port)
	if err != nil {
		return err
	}
	cfg.Arm.Calibration = cal

	if err := cfg.SaveTo(opts.Config); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Preview the choreography with: " + headerStyle.Render("hanoi plan"))
	fmt.Println("Start the demonstration with:  " + headerStyle.Render("hanoi run"))
	return nil
}

// scanForArm wiggles each arm found until the user picks one.
func scanForArm() string {
	fmt.Println("Scanning for robot arms...")
	fmt.Println()

	ctx := context.Background()
	arms := findArms(ctx)
	if len(arms) == 0 {
		fmt.Println("No SO-101 arms found.")
		fmt.Println("Make sure the arm is connected and powered on.")
		return ""
	}
	defer func() {
		for _, a := range arms {
			a.bus.Close()
		}
	}()

	for _, arm := range arms {
		fmt.Printf("\n  Wiggling arm on %s...\n", arm.port)
		if err := wiggle(ctx, arm); err != nil {
			fmt.Printf("  %v\n", err)
			continue
		}

		var use bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Use the arm on %s?", arm.port)).
					Description("The arm that just wiggled").
					Affirmative("Use it").
					Negative("Skip").
					Value(&use),
			),
		)
		if err := form.Run(); err != nil {
			fmt.Println()
			os.Exit(0)
		}
		if use {
			return arm.port
		}
	}
	return ""
}

func calibrateArm(port string) (robot.Calibration, error) {
	fmt.Printf("Calibrating arm on %s\n", port)
	fmt.Println()

	ctx := context.Background()
	arm, err := openArm(ctx, port)
	if err != nil {
		return nil, fmt.Errorf("connect to arm: %w", err)
	}
	defer arm.bus.Close()

	servoMap := make(map[int]*feetech.Servo)
	for _, s := range arm.servos {
		servoMap[s.ID] = feetech.NewServo(arm.bus, s.ID, s.Model)
	}

	// free the joints so the arm can be moved by hand
	for _, servo := range servoMap {
		servo.Disable(ctx)
	}

	motors := robot.AllMotors()

	fmt.Println(subHeaderStyle.Render("Zero pose"))
	waitForUser("Point the arm straight up with the gripper closed, then continue.")

	zero := make(map[robot.MotorName]int)
	cur := make(map[robot.MotorName]int)
	lo := make(map[robot.MotorName]int)
	hi := make(map[robot.MotorName]int)
	for i, name := range motors {
		pos, err := servoMap[i+1].Position(ctx)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		zero[name], cur[name], lo[name], hi[name] = pos, pos, pos, pos
	}

	fmt.Println()
	fmt.Println(subHeaderStyle.Render("Record range of motion"))
	fmt.Println("Move each joint to its minimum AND maximum positions.")
	fmt.Println()

	p := tea.NewProgram(newCalibrationModel(motors, servoMap, cur, lo, hi))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("run calibration: %w", err)
	}
	cm := final.(calibrationModel)

	cal := make(robot.Calibration, len(motors))
	for i, name := range motors {
		mc := robot.MotorCalibration{
			ID:       i + 1,
			RangeMin: cm.minPositions[name],
			RangeMax: cm.maxPositions[name],
		}
		mc.HomingOffset = zero[name] - (mc.RangeMin+mc.RangeMax)/2
		cal[name] = mc
	}

	fmt.Println()
	fmt.Println("Arm calibrated.")
	return cal, nil
}

func waitForUser(prompt string) {
	fmt.Println(prompt)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("").
				Affirmative("Continue").
				Negative("").
				Value(new(bool)),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
}

type calibrationModel struct {
	motors       []robot.MotorName
	servoMap     map[int]*feetech.Servo
	curPositions map[robot.MotorName]int
	minPositions map[robot.MotorName]int
	maxPositions map[robot.MotorName]int
	quitting     bool
}

type tickMsg time.Time

func newCalibrationModel(
	motors []robot.MotorName,
	servoMap map[int]*feetech.Servo,
	curPositions, minPositions, maxPositions map[robot.MotorName]int,
) calibrationModel {
	return calibrationModel{
		motors:       motors,
		servoMap:     servoMap,
		curPositions: curPositions,
		minPositions: minPositions,
		maxPositions: maxPositions,
	}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m calibrationModel) Init() tea.Cmd {
	return tick()
}

func (m calibrationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		ctx := context.Background()
		for i, name := range m.motors {
			pos, err := m.servoMap[i+1].Position(ctx)
			if err != nil {
				continue
			}
			m.curPositions[name] = pos
			m.minPositions[name] = min(m.minPositions[name], pos)
			m.maxPositions[name] = max(m.maxPositions[name], pos)
		}
		return m, tick()
	}

	return m, nil
}

func (m calibrationModel) View() string {
	if m.quitting {
		return ""
	}

	headerCell := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	motorCell := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	currentCell := lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Padding(0, 1)
	goodCell := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
	lowCell := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)

	rows := make([][]string, 0, len(m.motors))
	ranges := make([]int, 0, len(m.motors))
	for _, name := range m.motors {
		mc := robot.MotorCalibration{RangeMin: m.minPositions[name], RangeMax: m.maxPositions[name]}
		ranges = append(ranges, mc.RangeMax-mc.RangeMin)
		rows = append(rows, []string{
			string(name),
			fmt.Sprintf("%d", m.curPositions[name]),
			fmt.Sprintf("%+.0f", mc.Normalize(m.curPositions[name])),
			fmt.Sprintf("%d", mc.RangeMin),
			fmt.Sprintf("%d", mc.RangeMax),
			fmt.Sprintf("%d", mc.RangeMax-mc.RangeMin),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Motor", "Current", "Norm", "Min", "Max", "Range").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			switch col {
			case 0:
				return motorCell
			case 1, 2:
				return currentCell
			case 5:
				if row >= 0 && row < len(ranges) && ranges[row] > 500 {
					return goodCell
				}
				return lowCell
			default:
				return cell
			}
		})

	var sb strings.Builder
	sb.WriteString(t.Render())
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Press Enter when done"))
	return sb.String()
}
