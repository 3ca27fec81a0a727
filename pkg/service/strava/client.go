package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/domain/interfaces"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
	"github.com/runclub/paceline/pkg/utils/safe"
)

const (
	defaultAPIBaseURL = "https://www.strava.com"

	// Strava access tokens live 6 hours. Refresh when the stored token is
	// inside this window of expiry so an in-flight fetch never races it.
	refreshSkew = 60 * time.Second
)

var (
	// ErrRefreshFailed means the stored refresh token was rejected. The
	// athlete has to re-authorize.
	ErrRefreshFailed = errors.New("strava token refresh failed")

	// ErrFetchFailed means the activity detail request returned a non-200.
	ErrFetchFailed = errors.New("strava activity fetch failed")
)

// Client calls the Strava v3 API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	redirectURI  string
}

var _ interfaces.StravaClient = &Client{}

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

func New(clientID, clientSecret, redirectURI string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:      defaultAPIBaseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NeedsRefresh reports whether the stored credentials are expired or about to
// expire.
func NeedsRefresh(conn *model.StravaConnection, now time.Time) bool {
	return time.Unix(conn.ExpiresAt, 0).Add(-refreshSkew).Before(now)
}

func (c *Client) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURI)
	q.Set("response_type", "code")
	q.Set("approval_prompt", "auto")
	q.Set("scope", "read,activity:read_all")
	if state != "" {
		q.Set("state", state)
	}

	return c.baseURL + "/oauth/authorize?" + q.Encode()
}

func (c *Client) ActivityURL(id types.ActivityID) string {
	return fmt.Sprintf("%s/activities/%d", c.baseURL, id.Int64())
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (*model.StravaToken, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")

	token, err := c.postToken(ctx, form)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to exchange authorization code")
	}

	return token, nil
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*model.StravaToken, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", "refresh_token")

	token, err := c.postToken(ctx, form)
	if err != nil {
		return nil, goerr.Wrap(ErrRefreshFailed, "token refresh rejected", goerr.V("cause", err.Error()))
	}

	return token, nil
}

func (c *Client) postToken(ctx context.Context, form url.Values) (*model.StravaToken, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call token endpoint")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, goerr.New("token endpoint returned non-200",
			goerr.V("status", resp.StatusCode), goerr.V("body", string(body)))
	}

	var token model.StravaToken
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, goerr.Wrap(err, "failed to decode token response")
	}

	return &token, nil
}

func (c *Client) GetActivity(ctx context.Context, accessToken string, id types.ActivityID) (*model.Activity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/v3/activities/%d", c.baseURL, id.Int64()), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build activity request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call activity endpoint", goerr.V("activity_id", id))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, goerr.Wrap(ErrFetchFailed, "activity endpoint returned non-200",
			goerr.V("activity_id", id),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)))
	}

	var activity model.Activity
	if err := json.NewDecoder(resp.Body).Decode(&activity); err != nil {
		return nil, goerr.Wrap(err, "failed to decode activity response", goerr.V("activity_id", id))
	}

	return &activity, nil
}
