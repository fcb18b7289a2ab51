package push

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
)

// Slack broadcasts messages to a single channel
type Slack struct {
	api       *slack.Client
	channelID string
}

// SlackOption configures a Slack backend
type SlackOption func(*slackConfig)

type slackConfig struct {
	apiOptions []slack.Option
}

// WithSlackAPIURL points the client at a different API root
func WithSlackAPIURL(url string) SlackOption {
	return func(c *slackConfig) {
		c.apiOptions = append(c.apiOptions, slack.OptionAPIURL(url))
	}
}

// NewSlack creates a backend posting to channelID with the bot token
func NewSlack(token, channelID string, opts ...SlackOption) (*Slack, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack channel ID is required")
	}

	var cfg slackConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Slack{
		api:       slack.New(token, cfg.apiOptions...),
		channelID: channelID,
	}, nil
}

func (s *Slack) Send(ctx context.Context, msg *model.PushMessage) error {
	if err := validate(msg); err != nil {
		return err
	}

	fallback := msg.Title
	if msg.Body != "" {
		fallback = strings.TrimSpace(msg.Title + ": " + msg.Body)
	}

	_, ts, err := s.api.PostMessageContext(ctx, s.channelID,
		slack.MsgOptionBlocks(buildMessageBlocks(msg)...),
		slack.MsgOptionText(fallback, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post push message to Slack",
			goerr.V("channel_id", s.channelID))
	}

	logging.From(ctx).Debug("push message posted to Slack", "channel_id", s.channelID, "ts", ts)
	return nil
}

func buildMessageBlocks(msg *model.PushMessage) []slack.Block {
	blocks := []slack.Block{}

	if msg.Title != "" {
		blocks = append(blocks, slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, msg.Title, true, false),
		))
	}

	if msg.Body != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, msg.Body, false, false),
			nil, nil,
		))
	}

	if msg.EventURL != "" {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf(":link: <%s|Open event>", msg.EventURL), false, false),
		))
	}

	return blocks
}
