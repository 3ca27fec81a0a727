package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Peloton holds CLI flags for the Peloton polling loop
type Peloton struct {
	enabled      bool
	pollInterval time.Duration
	workoutLimit int
}

func (p *Peloton) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "peloton-enabled",
			Usage:       "Enable the Peloton polling loop",
			Value:       true,
			Sources:     cli.EnvVars("PACELINE_PELOTON_ENABLED"),
			Destination: &p.enabled,
		},
		&cli.DurationFlag{
			Name:        "peloton-poll-interval",
			Usage:       "Interval between Peloton poll cycles",
			Value:       5 * time.Minute,
			Sources:     cli.EnvVars("PACELINE_PELOTON_POLL_INTERVAL"),
			Destination: &p.pollInterval,
		},
		&cli.IntFlag{
			Name:        "peloton-workout-limit",
			Usage:       "Recent workouts inspected per member per cycle",
			Value:       10,
			Sources:     cli.EnvVars("PACELINE_PELOTON_WORKOUT_LIMIT"),
			Destination: &p.workoutLimit,
		},
	}
}

func (p *Peloton) Enabled() bool {
	return p.enabled
}

func (p *Peloton) PollInterval() time.Duration {
	return p.pollInterval
}

func (p *Peloton) WorkoutLimit() int {
	return p.workoutLimit
}

func (p *Peloton) Validate() error {
	if p.pollInterval < time.Minute {
		return goerr.New("peloton-poll-interval must be at least 1 minute", goerr.V("interval", p.pollInterval))
	}
	if p.workoutLimit < 1 {
		return goerr.New("peloton-workout-limit must be positive", goerr.V("limit", p.workoutLimit))
	}
	return nil
}
