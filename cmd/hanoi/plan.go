package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.uber.org/zap"

	"github.com/gwillem/hanoiarm/pkg/actuator"
	"github.com/gwillem/hanoiarm/pkg/choreo"
	"github.com/gwillem/hanoiarm/pkg/enable"
	"github.com/gwillem/hanoiarm/pkg/hanoi"
)

type PlanCommand struct {
	Cycles int  `long:"cycles" default:"1" description:"Number of solves to simulate"`
	JSON   bool `long:"json" description:"Print the published commands as JSON lines"`
}

func (c *PlanCommand) Execute(args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	sim, err := simulate(cfg.Choreography, c.Cycles)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		for _, cmd := range sim.commands {
			if err := enc.Encode(cmd); err != nil {
				return err
			}
		}
		return nil
	}

	fmt.Println(renderPlan(sim.rows))
	fmt.Println()
	fmt.Printf("%d waypoints, %s of settle time, ending in %s\n",
		len(sim.rows), sim.elapsed, sim.final)
	return nil
}

// planRow is one published waypoint with the time it went out.
type planRow struct {
	Cycle    int
	Move     hanoi.Move
	Waypoint choreo.Waypoint
	Delay    time.Duration
	At       time.Duration
}

// virtualClock advances simulated time instead of sleeping.
type virtualClock struct {
	now time.Duration
}

func (c *virtualClock) Sleep(ctx context.Context, d time.Duration) error {
	c.now += d
	return ctx.Err()
}

// planRecorder collects rows and clears the enable flag once enough cycles
// have completed.
type planRecorder struct {
	clock  *virtualClock
	flag   *enable.Flag
	cycles int
	status interface{ Status() choreo.Status }

	rows []planRow
	mark int
}

func (r *planRecorder) Waypoint(w choreo.Waypoint, delay time.Duration) {
	// rows are provisionally tagged with the last finished move: a held disk
	// released on disable never reports Relocated again
	st := r.status.Status()
	r.rows = append(r.rows, planRow{
		Cycle:    st.Cycle,
		Move:     st.Move,
		Waypoint: w,
		Delay:    delay,
		At:       r.clock.now,
	})
	if w.Phase == choreo.PhaseHome {
		r.mark = len(r.rows)
	}
}

func (r *planRecorder) Relocated(m hanoi.Move, _ hanoi.State) {
	for i := r.mark; i < len(r.rows); i++ {
		r.rows[i].Move = m
	}
	r.mark = len(r.rows)
}

func (r *planRecorder) CycleDone(cycle int) {
	if cycle >= r.cycles {
		r.flag.Set(false)
	}
}

type simulation struct {
	rows     []planRow
	commands []actuator.Command
	elapsed  time.Duration
	final    hanoi.State
}

// simulate runs the control loop against a recorder on a virtual clock.
func simulate(cfg choreo.Config, cycles int) (*simulation, error) {
	if cycles < 1 {
		return nil, errors.New("need at least one cycle")
	}

	clock := &virtualClock{}
	flag := enable.NewFlag(true)
	rec := actuator.NewRecorder()
	pr := &planRecorder{clock: clock, flag: flag, cycles: cycles}

	engine, err := choreo.NewEngine(cfg, rec,
		choreo.WithClock(clock),
		choreo.WithLogger(zap.NewNop()),
		choreo.WithObserver(pr))
	if err != nil {
		return nil, err
	}
	ctrl, err := choreo.NewController(engine, flag)
	if err != nil {
		return nil, err
	}
	pr.status = ctrl

	if err := ctrl.Run(context.Background()); err != nil {
		return nil, err
	}
	return &simulation{
		rows:     pr.rows,
		commands: rec.Commands(),
		elapsed:  clock.now,
		final:    engine.State(),
	}, nil
}

var phaseColors = map[choreo.Category]string{
	choreo.CategoryVertical: "14",
	choreo.CategoryRotation: "11",
	choreo.CategoryGrip:     "201",
}

func renderPlan(rows []planRow) string {
	headerCell := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	data := make([][]string, 0, len(rows))
	for i, r := range rows {
		move := "-"
		if r.Waypoint.Phase != choreo.PhaseHome {
			move = r.Move.String()
		}
		w := r.Waypoint
		data = append(data, []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", r.Cycle),
			move,
			w.Phase.String(),
			w.Peg.String(),
			fmt.Sprintf("%.3f", w.Position.X),
			fmt.Sprintf("%.3f", w.Position.Y),
			fmt.Sprintf("%.3f", w.Position.Z),
			fmt.Sprintf("%.3f", w.Gripper),
			r.Delay.String(),
			r.At.String(),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("#", "Cycle", "Move", "Phase", "Peg", "x", "y", "z", "Grip", "Wait", "t").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			if col == 3 && row >= 0 && row < len(rows) {
				color := phaseColors[rows[row].Waypoint.Phase.Category()]
				return cell.Foreground(lipgloss.Color(color))
			}
			return cell
		}).
		Render()
}
