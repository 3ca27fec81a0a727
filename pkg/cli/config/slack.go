package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for the Slack bot
type Slack struct {
	botToken string
}

func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (xoxb-...)",
			Sources:     cli.EnvVars("PACELINE_SLACK_BOT_TOKEN", "SLACK_BOT_TOKEN"),
			Destination: &s.botToken,
		},
	}
}

func (s *Slack) Validate() error {
	if s.botToken == "" {
		return goerr.New("slack-bot-token is required")
	}
	return nil
}

func (s *Slack) Configure() (*slack.Client, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return slack.New(s.botToken), nil
}

// LogValue masks the bot token in logs
func (s Slack) LogValue() slog.Value {
	token := s.botToken
	if token != "" {
		token = "[REDACTED]"
	}
	return slog.GroupValue(
		slog.String("bot_token", token),
	)
}
