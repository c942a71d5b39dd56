package main

import (
	"context"
	"time"

	"github.com/opd-ai/go-aviator/pkg/engine"
	"github.com/opd-ai/go-aviator/pkg/logging"
)

type flightOptions struct {
	duration time.Duration
	realtime bool
	logEvery time.Duration
}

// fly runs the scripted flight until the duration of simulated time is
// covered or ctx ends. It returns the number of ticks run.
func fly(ctx context.Context, sim *engine.Simulation, logger *logging.Logger, opts flightOptions) (uint64, error) {
	step := sim.StepDuration()
	logTicks := uint64(1)
	if opts.logEvery > step {
		logTicks = uint64(opts.logEvery / step)
	}
	start := sim.Tick()
	elapsed := func() time.Duration { return time.Duration(sim.Tick()-start) * step }
	done := func() bool { return opts.duration > 0 && elapsed() >= opts.duration }

	report := func(from, to uint64) {
		for _, e := range sim.Events() {
			logger.Debug(ctx, "flight event", "type", string(e.GetType()))
		}
		if from/logTicks == to/logTicks {
			return
		}
		s := sim.Snapshot()
		args := []any{
			"tick", to,
			"vehicle", s.Archetype.String(),
			"engine_on", s.EngineOn,
			"altitude", s.Altitude,
			"airspeed", s.Airspeed,
			"density", s.Density,
		}
		if len(s.Units) > 0 {
			args = append(args, "spin_rate", s.Units[0].SpinRate)
		}
		logger.Info(ctx, "flight state", args...)
	}

	if !opts.realtime {
		for !done() {
			if err := ctx.Err(); err != nil {
				return sim.Tick() - start, err
			}
			before := sim.Tick()
			if err := sim.Step(scriptedInput(elapsed())); err != nil {
				return sim.Tick() - start, err
			}
			report(before, sim.Tick())
		}
		return sim.Tick() - start, nil
	}

	ticker := time.NewTicker(step)
	defer ticker.Stop()
	last := time.Now()
	for !done() {
		select {
		case <-ctx.Done():
			return sim.Tick() - start, ctx.Err()
		case now := <-ticker.C:
			before := sim.Tick()
			if _, err := sim.Advance(now.Sub(last), scriptedInput(elapsed())); err != nil {
				return sim.Tick() - start, err
			}
			last = now
			report(before, sim.Tick())
		}
	}
	return sim.Tick() - start, nil
}
