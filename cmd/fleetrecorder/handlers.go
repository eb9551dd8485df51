package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/subcom/fleet/internal/dispatcher"
	"github.com/subcom/fleet/pkg/core"
)

// registerCommandHandlers wires the fleet commands into the dispatcher.
// Handlers run synchronously: the replay loop depends on positions
// being current before each collision check.
func registerCommandHandlers(d *dispatcher.Dispatcher) {
	d.Register(":MOVE:", handleMove, dispatcher.Logged())
	d.Register(":FIRE:", handleFire, dispatcher.Logged())
	d.Register(":SONAR:", handleSonar, dispatcher.Logged())
	d.Register(":NUKE:", handleNuke, dispatcher.Logged())
}

// handleMove applies one movement order: [serial, direction, distance].
func handleMove(e dispatcher.Event) (any, error) {
	if len(e.Args) != 3 {
		return nil, fmt.Errorf(":MOVE: expects 3 args, got %d", len(e.Args))
	}

	sub, err := registry.Get(core.SerialNumber(e.Args[0]))
	if err != nil {
		return nil, err
	}
	distance, err := strconv.Atoi(e.Args[2])
	if err != nil {
		return nil, fmt.Errorf(":MOVE: distance %q is not an integer", e.Args[2])
	}

	rec, ok := engine.Move(sub, core.ParseDirection(e.Args[1]), distance)
	if !ok {
		// invalid direction is warned by the engine, not an error
		return nil, nil
	}
	queues.Movements.Push(rec)
	return rec, nil
}

// handleFire fires one torpedo: [serial, direction].
func handleFire(e dispatcher.Event) (any, error) {
	if len(e.Args) != 2 {
		return nil, fmt.Errorf(":FIRE: expects 2 args, got %d", len(e.Args))
	}

	order, err := weaponsDispatcher.Fire(
		core.SerialNumber(e.Args[0]),
		core.ParseDirection(e.Args[1]),
	)
	if err != nil {
		return nil, err
	}
	queues.Torpedoes.Push(order)
	return order, nil
}

// handleSonar aggregates one submarine's sensor stream: [serial].
func handleSonar(e dispatcher.Event) (any, error) {
	if len(e.Args) != 1 {
		return nil, fmt.Errorf(":SONAR: expects 1 arg, got %d", len(e.Args))
	}

	sn := core.SerialNumber(e.Args[0])
	faults, err := sensorAggregator.Aggregate(sn)
	if err != nil {
		return nil, err
	}

	report := core.SensorFaultReport{
		Serial: sn,
		Faults: faults,
		Time:   time.Now(),
	}
	queues.SensorFaults.Push(report)
	return report, nil
}

// handleNuke runs one authorization attempt: [serial, credential].
// Denial is a recorded outcome, not an error.
func handleNuke(e dispatcher.Event) (any, error) {
	if len(e.Args) != 2 {
		return nil, fmt.Errorf(":NUKE: expects 2 args, got %d", len(e.Args))
	}

	sn := core.SerialNumber(e.Args[0])
	authorized, err := nukeAuthorizer.Authorize(sn, e.Args[1])
	if err != nil {
		return nil, err
	}

	attempt := core.NukeAttempt{
		Serial:     sn,
		Authorized: authorized,
		Time:       time.Now(),
	}
	queues.NukeAttempts.Push(attempt)
	return attempt, nil
}
