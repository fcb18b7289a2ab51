package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/interfaces"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/service/push"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
)

// Push holds CLI flags for push notification backends
type Push struct {
	endpoint     string
	token        string
	slackToken   string
	slackChannel string
}

func (p *Push) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "push-endpoint",
			Usage:       "HTTP endpoint receiving push messages as JSON",
			Category:    "Push",
			Sources:     cli.EnvVars("COMMUNITY_PUSH_ENDPOINT"),
			Destination: &p.endpoint,
		},
		&cli.StringFlag{
			Name:        "push-token",
			Usage:       "Bearer token for the push endpoint",
			Category:    "Push",
			Sources:     cli.EnvVars("COMMUNITY_PUSH_TOKEN"),
			Destination: &p.token,
		},
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token for mirroring push messages",
			Category:    "Push",
			Sources:     cli.EnvVars("COMMUNITY_SLACK_BOT_TOKEN"),
			Destination: &p.slackToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Slack channel receiving push messages",
			Category:    "Push",
			Sources:     cli.EnvVars("COMMUNITY_SLACK_CHANNEL_ID"),
			Destination: &p.slackChannel,
		},
	}
}

// Configure builds the push sender. Without any backend, messages are dropped.
func (p *Push) Configure() (interfaces.PushSender, error) {
	var senders push.Multi

	if p.endpoint != "" {
		sender, err := push.NewHTTP(p.endpoint, p.token)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure push endpoint")
		}
		senders = append(senders, sender)
		logging.Default().Info("HTTP push enabled", "endpoint", p.endpoint)
	}

	if p.slackToken != "" || p.slackChannel != "" {
		sender, err := push.NewSlack(p.slackToken, p.slackChannel)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure slack push")
		}
		senders = append(senders, sender)
		logging.Default().Info("Slack push enabled", "channel_id", p.slackChannel)
	}

	switch len(senders) {
	case 0:
		logging.Default().Warn("No push backend configured, push messages are dropped")
		return push.Nop{}, nil
	case 1:
		return senders[0], nil
	default:
		return senders, nil
	}
}
