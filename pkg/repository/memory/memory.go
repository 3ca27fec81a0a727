package memory

import (
	"github.com/runclub/paceline/pkg/domain/interfaces"
)

// Memory is an in-memory Repository backend for tests and local runs.
type Memory struct {
	strava       *stravaRepository
	peloton      *pelotonRepository
	verification *verificationRepository
	postedAct    *postedActivityRepository
	postedWkt    *postedWorkoutRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		strava:       newStravaRepository(),
		peloton:      newPelotonRepository(),
		verification: newVerificationRepository(),
		postedAct:    newPostedActivityRepository(),
		postedWkt:    newPostedWorkoutRepository(),
	}
}

func (m *Memory) Strava() interfaces.StravaConnectionRepository {
	return m.strava
}

func (m *Memory) Peloton() interfaces.PelotonConnectionRepository {
	return m.peloton
}

func (m *Memory) SlackVerification() interfaces.SlackVerificationRepository {
	return m.verification
}

func (m *Memory) PostedActivity() interfaces.PostedActivityRepository {
	return m.postedAct
}

func (m *Memory) PostedWorkout() interfaces.PostedWorkoutRepository {
	return m.postedWkt
}

func (m *Memory) Close() error {
	return nil
}
