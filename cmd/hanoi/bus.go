package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"
)

const (
	baudRate    = 1_000_000
	busTimeout  = 100 * time.Millisecond
	scanTimeout = 2 * time.Second
	servoMin    = 1
	servoMax    = 6
)

type armInfo struct {
	port   string
	servos []feetech.FoundServo
	bus    *feetech.Bus
}

// openArm opens the bus on port and checks that servos 1-6 answer. The bus
// is closed again unless an arm is found.
func openArm(ctx context.Context, port string) (armInfo, error) {
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: baudRate,
		Protocol: feetech.ProtocolSTS,
		Timeout:  busTimeout,
	})
	if err != nil {
		return armInfo{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()
	servos, err := bus.Scan(ctx, servoMin, servoMax)
	if err == nil {
		err = checkServos(servos)
	}
	if err != nil {
		bus.Close()
		return armInfo{}, err
	}
	return armInfo{port: port, servos: servos, bus: bus}, nil
}

// findArms tries every serial port. The returned buses are open; the caller
// closes them.
func findArms(ctx context.Context) []armInfo {
	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Printf("Error listing ports: %v\n", err)
		return nil
	}

	var arms []armInfo
	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}
		arm, err := openArm(ctx, port)
		if err != nil {
			continue
		}
		fmt.Printf("  Found SO-101 arm on %s\n", port)
		arms = append(arms, arm)
	}
	return arms
}

// checkServos reports which of the ids 1-6 did not answer a scan.
func checkServos(servos []feetech.FoundServo) error {
	seen := make(map[int]bool, len(servos))
	for _, s := range servos {
		seen[s.ID] = true
	}
	var missing []string
	for id := servoMin; id <= servoMax; id++ {
		if !seen[id] {
			missing = append(missing, strconv.Itoa(id))
		}
	}
	if len(missing) > 0 || len(servos) != servoMax {
		return fmt.Errorf("not an SO-101 arm: found %d servos, missing ids [%s]",
			len(servos), strings.Join(missing, " "))
	}
	return nil
}

// wiggle nudges the shoulder pan servo back and forth so the user can tell
// which arm sits on which port.
func wiggle(ctx context.Context, arm armInfo) error {
	var servo *feetech.Servo
	for _, s := range arm.servos {
		if s.ID == 1 {
			servo = feetech.NewServo(arm.bus, s.ID, s.Model)
			break
		}
	}
	if servo == nil {
		return fmt.Errorf("no shoulder pan servo on %s", arm.port)
	}

	orig, err := servo.Position(ctx)
	if err != nil {
		return fmt.Errorf("read position: %w", err)
	}
	if err := servo.Enable(ctx); err != nil {
		return fmt.Errorf("enable servo: %w", err)
	}
	defer servo.Disable(ctx)

	const amount, moveMs = 30, 500
	for _, pos := range []int{orig + amount, orig - amount, orig} {
		servo.SetPositionWithTime(ctx, pos, moveMs)
		time.Sleep(time.Duration(moveMs+100) * time.Millisecond)
	}
	return nil
}
