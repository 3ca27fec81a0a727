package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/service/strava"
	"github.com/urfave/cli/v3"
)

// Strava holds CLI flags for the Strava API application
type Strava struct {
	clientID     string
	clientSecret string
	verifyToken  string
	redirectURI  string
}

func (s *Strava) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "strava-client-id",
			Usage:       "Strava API application client ID",
			Sources:     cli.EnvVars("PACELINE_STRAVA_CLIENT_ID", "STRAVA_CLIENT_ID"),
			Destination: &s.clientID,
		},
		&cli.StringFlag{
			Name:        "strava-client-secret",
			Usage:       "Strava API application client secret",
			Sources:     cli.EnvVars("PACELINE_STRAVA_CLIENT_SECRET", "STRAVA_CLIENT_SECRET"),
			Destination: &s.clientSecret,
		},
		&cli.StringFlag{
			Name:        "strava-verify-token",
			Usage:       "Token echoed during the webhook subscription handshake",
			Sources:     cli.EnvVars("PACELINE_STRAVA_VERIFY_TOKEN", "STRAVA_VERIFY_TOKEN"),
			Destination: &s.verifyToken,
		},
		&cli.StringFlag{
			Name:        "strava-redirect-uri",
			Usage:       "OAuth redirect URI (defaults to <base-url>/auth/strava/callback)",
			Sources:     cli.EnvVars("PACELINE_STRAVA_REDIRECT_URI", "STRAVA_REDIRECT_URI"),
			Destination: &s.redirectURI,
		},
	}
}

func (s *Strava) VerifyToken() string {
	return s.verifyToken
}

// Configure builds the Strava client. baseURL supplies the default redirect
// URI when none was given.
func (s *Strava) Configure(baseURL string) (*strava.Client, error) {
	if s.clientID == "" || s.clientSecret == "" {
		return nil, goerr.New("strava-client-id and strava-client-secret are required")
	}

	redirectURI := s.redirectURI
	if redirectURI == "" {
		if baseURL == "" {
			return nil, goerr.New("strava-redirect-uri or base-url is required")
		}
		redirectURI = baseURL + "/auth/strava/callback"
	}

	return strava.New(s.clientID, s.clientSecret, redirectURI), nil
}

// LogValue masks the client secret in logs
func (s Strava) LogValue() slog.Value {
	secret := s.clientSecret
	if secret != "" {
		secret = "[REDACTED]"
	}
	return slog.GroupValue(
		slog.String("client_id", s.clientID),
		slog.String("client_secret", secret),
		slog.String("redirect_uri", s.redirectURI),
	)
}
