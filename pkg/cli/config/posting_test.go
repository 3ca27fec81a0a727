package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/runclub/paceline/pkg/cli/config"
	"github.com/runclub/paceline/pkg/domain/types"
)

func writeDisciplinesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "disciplines.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestPosting_Configure(t *testing.T) {
	t.Run("requires a channel ID", func(t *testing.T) {
		cfg := config.NewPostingForTest("", "", "")
		_, err := cfg.Configure()
		gt.Error(t, err)
	})

	t.Run("defaults to the built-in disciplines", func(t *testing.T) {
		cfg := config.NewPostingForTest("C0CHANNEL", "U0PEDOMETER", "")
		posting, err := cfg.Configure()
		gt.NoError(t, err).Required()

		gt.Value(t, posting.ChannelID).Equal("C0CHANNEL")
		gt.Value(t, posting.PedometerUserID).Equal(types.SlackUserID("U0PEDOMETER"))
		gt.Value(t, posting.Emoji("running")).Equal("🏃")
		gt.Value(t, posting.Emoji("cycling")).Equal("🚴")
	})

	t.Run("loads disciplines from TOML", func(t *testing.T) {
		path := writeDisciplinesFile(t, `
[[discipline]]
id = "rowing"
emoji = "🚣"

[[discipline]]
id = "running"
emoji = "🏃"
`)
		cfg := config.NewPostingForTest("C0CHANNEL", "", path)
		posting, err := cfg.Configure()
		gt.NoError(t, err).Required()

		gt.Value(t, posting.Emoji("rowing")).Equal("🚣")
		gt.Number(t, len(posting.Disciplines)).Equal(2)
	})

	t.Run("rejects duplicate discipline IDs", func(t *testing.T) {
		path := writeDisciplinesFile(t, `
[[discipline]]
id = "running"
emoji = "🏃"

[[discipline]]
id = "running"
emoji = "🚶"
`)
		cfg := config.NewPostingForTest("C0CHANNEL", "", path)
		_, err := cfg.Configure()
		gt.Error(t, err)
	})

	t.Run("rejects an entry without an emoji", func(t *testing.T) {
		path := writeDisciplinesFile(t, `
[[discipline]]
id = "rowing"
`)
		cfg := config.NewPostingForTest("C0CHANNEL", "", path)
		_, err := cfg.Configure()
		gt.Error(t, err)
	})

	t.Run("fails on a missing file", func(t *testing.T) {
		cfg := config.NewPostingForTest("C0CHANNEL", "", "/nonexistent/disciplines.toml")
		_, err := cfg.Configure()
		gt.Error(t, err)
	})
}

func TestPeloton_Validate(t *testing.T) {
	gt.NoError(t, config.NewPelotonForTest(true, 5*time.Minute, 10).Validate())
	gt.Error(t, config.NewPelotonForTest(true, time.Second, 10).Validate())
	gt.Error(t, config.NewPelotonForTest(true, 5*time.Minute, 0).Validate())
}
