package peloton

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/domain/interfaces"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
	"github.com/runclub/paceline/pkg/utils/safe"
)

const (
	defaultAPIBaseURL     = "https://api.onepeloton.com"
	defaultMembersBaseURL = "https://members.onepeloton.com"

	sessionCookieName = "peloton_session_id"
)

var (
	// ErrLoginFailed means the credentials were rejected at login.
	ErrLoginFailed = errors.New("peloton login failed")

	// ErrSessionExpired means the stored session cookie no longer
	// authenticates. The member has to reconnect.
	ErrSessionExpired = errors.New("peloton session expired")
)

// Client calls the unofficial Peloton API with a session cookie.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	membersBaseURL string
}

var _ interfaces.PelotonClient = &Client{}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:        defaultAPIBaseURL,
		membersBaseURL: defaultMembersBaseURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) WorkoutURL(username string, id types.WorkoutID) string {
	return fmt.Sprintf("%s/members/%s/workouts/%s", c.membersBaseURL, username, string(id))
}

type loginRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

type loginResponse struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*model.PelotonSession, error) {
	body, err := json.Marshal(loginRequest{
		UsernameOrEmail: username,
		Password:        password,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal login request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/login", strings.NewReader(string(body)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build login request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call login endpoint")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.Wrap(ErrLoginFailed, "login endpoint returned non-200",
			goerr.V("status", resp.StatusCode))
	}

	var login loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return nil, goerr.Wrap(err, "failed to decode login response")
	}
	if login.SessionID == "" || login.UserID == "" {
		return nil, goerr.Wrap(ErrLoginFailed, "login response missing session or user ID")
	}

	return &model.PelotonSession{
		SessionID: login.SessionID,
		UserID:    types.PelotonUserID(login.UserID),
	}, nil
}

type workoutListResponse struct {
	Data []*model.WorkoutSummary `json:"data"`
}

func (c *Client) ListWorkouts(ctx context.Context, sessionID string, userID types.PelotonUserID, limit int) ([]*model.WorkoutSummary, error) {
	url := fmt.Sprintf("%s/api/user/%s/workouts?limit=%d&page=0", c.baseURL, string(userID), limit)

	var list workoutListResponse
	if err := c.getJSON(ctx, sessionID, url, &list); err != nil {
		return nil, goerr.Wrap(err, "failed to list workouts", goerr.V("peloton_user_id", userID))
	}

	return list.Data, nil
}

func (c *Client) GetWorkout(ctx context.Context, sessionID string, id types.WorkoutID) (*model.Workout, error) {
	url := fmt.Sprintf("%s/api/workout/%s", c.baseURL, string(id))

	var workout model.Workout
	if err := c.getJSON(ctx, sessionID, url, &workout); err != nil {
		return nil, goerr.Wrap(err, "failed to get workout", goerr.V("workout_id", id))
	}

	return &workout, nil
}

func (c *Client) getJSON(ctx context.Context, sessionID, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to build request")
	}
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sessionID})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to call peloton API")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode == http.StatusUnauthorized {
		return goerr.Wrap(ErrSessionExpired, "peloton API rejected session")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return goerr.New("peloton API returned non-200",
			goerr.V("status", resp.StatusCode), goerr.V("body", string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerr.Wrap(err, "failed to decode peloton response")
	}

	return nil
}
