package slack

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/domain/interfaces"
	"github.com/runclub/paceline/pkg/domain/types"
	"github.com/slack-go/slack"
)

// Client posts to Slack through the Web API.
type Client struct {
	api *slack.Client
}

var _ interfaces.SlackGateway = &Client{}

func New(botToken string) *Client {
	return &Client{
		api: slack.New(botToken),
	}
}

func (c *Client) PostMessage(ctx context.Context, channel string, text string) (string, error) {
	_, ts, err := c.api.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post slack message", goerr.V("channel", channel))
	}

	return ts, nil
}

// PostDM opens the conversation implicitly by posting to the user ID. Slack
// accepts a user ID as the channel argument for bot DMs.
func (c *Client) PostDM(ctx context.Context, user types.SlackUserID, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, string(user),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to send slack DM", goerr.V("user", user))
	}

	return nil
}
