package usecase_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
)

type stravaClientMock struct {
	exchangeCodeFn func(ctx context.Context, code string) (*model.StravaToken, error)
	refreshTokenFn func(ctx context.Context, refreshToken string) (*model.StravaToken, error)
	getActivityFn  func(ctx context.Context, accessToken string, id types.ActivityID) (*model.Activity, error)
}

func (m *stravaClientMock) ExchangeCode(ctx context.Context, code string) (*model.StravaToken, error) {
	return m.exchangeCodeFn(ctx, code)
}

func (m *stravaClientMock) RefreshToken(ctx context.Context, refreshToken string) (*model.StravaToken, error) {
	return m.refreshTokenFn(ctx, refreshToken)
}

func (m *stravaClientMock) GetActivity(ctx context.Context, accessToken string, id types.ActivityID) (*model.Activity, error) {
	return m.getActivityFn(ctx, accessToken, id)
}

func (m *stravaClientMock) AuthorizeURL(state string) string {
	return "https://www.strava.com/oauth/authorize?state=" + state
}

func (m *stravaClientMock) ActivityURL(id types.ActivityID) string {
	return fmt.Sprintf("https://www.strava.com/activities/%d", id.Int64())
}

type pelotonClientMock struct {
	loginFn        func(ctx context.Context, username, password string) (*model.PelotonSession, error)
	listWorkoutsFn func(ctx context.Context, sessionID string, userID types.PelotonUserID, limit int) ([]*model.WorkoutSummary, error)
	getWorkoutFn   func(ctx context.Context, sessionID string, id types.WorkoutID) (*model.Workout, error)
}

func (m *pelotonClientMock) Login(ctx context.Context, username, password string) (*model.PelotonSession, error) {
	return m.loginFn(ctx, username, password)
}

func (m *pelotonClientMock) ListWorkouts(ctx context.Context, sessionID string, userID types.PelotonUserID, limit int) ([]*model.WorkoutSummary, error) {
	return m.listWorkoutsFn(ctx, sessionID, userID, limit)
}

func (m *pelotonClientMock) GetWorkout(ctx context.Context, sessionID string, id types.WorkoutID) (*model.Workout, error) {
	return m.getWorkoutFn(ctx, sessionID, id)
}

func (m *pelotonClientMock) WorkoutURL(username string, id types.WorkoutID) string {
	return fmt.Sprintf("https://members.onepeloton.com/members/%s/workouts/%s", username, string(id))
}

// slackGatewayMock records every message sent to it.
type slackGatewayMock struct {
	mu       sync.Mutex
	messages []sentMessage
	dms      []sentMessage
	postErr  error
	dmErr    error
}

type sentMessage struct {
	Channel string
	Text    string
}

func (m *slackGatewayMock) PostMessage(ctx context.Context, channel string, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postErr != nil {
		return "", m.postErr
	}
	m.messages = append(m.messages, sentMessage{Channel: channel, Text: text})
	return "1234567890.123456", nil
}

func (m *slackGatewayMock) PostDM(ctx context.Context, user types.SlackUserID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dmErr != nil {
		return m.dmErr
	}
	m.dms = append(m.dms, sentMessage{Channel: string(user), Text: text})
	return nil
}

func (m *slackGatewayMock) sentMessages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.messages...)
}

func (m *slackGatewayMock) sentDMs() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.dms...)
}
