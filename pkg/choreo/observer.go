package choreo

import (
	"time"

	"github.com/gwillem/hanoiarm/pkg/hanoi"
)

// Observer receives progress events from the engine and the control loop.
// Callbacks run on the control goroutine and must not block.
type Observer interface {
	// Waypoint is called after a waypoint was published, before its delay.
	Waypoint(w Waypoint, delay time.Duration)
	// Relocated is called once the stack state has been advanced.
	Relocated(m hanoi.Move, s hanoi.State)
	// CycleDone is called after every completed solve.
	CycleDone(cycle int)
}

// Observers fans events out to several observers.
type Observers []Observer

func (o Observers) Waypoint(w Waypoint, delay time.Duration) {
	for _, obs := range o {
		obs.Waypoint(w, delay)
	}
}

func (o Observers) Relocated(m hanoi.Move, s hanoi.State) {
	for _, obs := range o {
		obs.Relocated(m, s)
	}
}

func (o Observers) CycleDone(cycle int) {
	for _, obs := range o {
		obs.CycleDone(cycle)
	}
}
