package config

import "time"

// NewPostingForTest creates a Posting config for testing purposes
func NewPostingForTest(channelID, pedometerUserID, disciplinesPath string) *Posting {
	return &Posting{
		channelID:       channelID,
		pedometerUserID: pedometerUserID,
		disciplinesPath: disciplinesPath,
	}
}

// NewPelotonForTest creates a Peloton config for testing purposes
func NewPelotonForTest(enabled bool, pollInterval time.Duration, workoutLimit int) *Peloton {
	return &Peloton{
		enabled:      enabled,
		pollInterval: pollInterval,
		workoutLimit: workoutLimit,
	}
}
