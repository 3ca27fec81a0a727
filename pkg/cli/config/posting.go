package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Posting holds CLI flags for where and how workouts are announced
type Posting struct {
	channelID       string
	pedometerUserID string
	disciplinesPath string
}

// disciplinesFile is the TOML shape of the optional discipline config:
//
//	[[discipline]]
//	id = "rowing"
//	emoji = "🚣"
type disciplinesFile struct {
	Disciplines []disciplineEntry `toml:"discipline"`
}

type disciplineEntry struct {
	ID    string `toml:"id"`
	Emoji string `toml:"emoji"`
}

func (d *disciplineEntry) Validate() error {
	if d.ID == "" {
		return goerr.New("discipline id is required")
	}
	if d.Emoji == "" {
		return goerr.New("discipline emoji is required", goerr.V("id", d.ID))
	}
	return nil
}

func (p *Posting) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Channel where workouts are posted",
			Sources:     cli.EnvVars("PACELINE_SLACK_CHANNEL_ID", "SLACK_CHANNEL_ID"),
			Destination: &p.channelID,
		},
		&cli.StringFlag{
			Name:        "pedometer-user-id",
			Usage:       "Slack user ID of the pedometer bot mentioned in posts (optional)",
			Sources:     cli.EnvVars("PACELINE_PEDOMETER_USER_ID", "FETCH_PEDOMETER_USER_ID"),
			Destination: &p.pedometerUserID,
		},
		&cli.StringFlag{
			Name:        "disciplines-config",
			Usage:       "TOML file mapping Peloton disciplines to emoji (optional)",
			Sources:     cli.EnvVars("PACELINE_DISCIPLINES_CONFIG"),
			Destination: &p.disciplinesPath,
		},
	}
}

// Configure builds the posting config. Without a disciplines file the
// built-in running/walking/cycling set applies.
func (p *Posting) Configure() (*model.PostingConfig, error) {
	if p.channelID == "" {
		return nil, goerr.New("slack-channel-id is required")
	}

	disciplines := model.DefaultDisciplines()
	if p.disciplinesPath != "" {
		data, err := os.ReadFile(p.disciplinesPath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read disciplines config", goerr.V("path", p.disciplinesPath))
		}

		var file disciplinesFile
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, goerr.Wrap(err, "failed to parse disciplines config", goerr.V("path", p.disciplinesPath))
		}

		seen := make(map[string]bool)
		disciplines = make([]model.Discipline, 0, len(file.Disciplines))
		for _, entry := range file.Disciplines {
			if err := entry.Validate(); err != nil {
				return nil, goerr.Wrap(err, "invalid discipline entry", goerr.V("path", p.disciplinesPath))
			}
			if seen[entry.ID] {
				return nil, goerr.New("duplicate discipline id", goerr.V("id", entry.ID))
			}
			seen[entry.ID] = true
			disciplines = append(disciplines, model.Discipline{ID: entry.ID, Emoji: entry.Emoji})
		}
	}

	return &model.PostingConfig{
		ChannelID:       p.channelID,
		PedometerUserID: types.SlackUserID(p.pedometerUserID),
		Disciplines:     disciplines,
	}, nil
}
