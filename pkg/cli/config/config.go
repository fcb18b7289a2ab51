package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/service/network"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/service/notification"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/service/offline"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/usecase"
)

// AppConfig represents the application configuration file
type AppConfig struct {
	Admins       []string           `toml:"admins"`
	Queue        QueueConfig        `toml:"queue"`
	Network      NetworkConfig      `toml:"network"`
	Notification NotificationConfig `toml:"notification"`
	Calendar     CalendarConfig     `toml:"calendar"`
	Teams        TeamsConfig        `toml:"teams"`
}

// QueueConfig configures the offline action queue
type QueueConfig struct {
	AllowedTypes []string `toml:"allowed_types"`
	MaxRetries   int      `toml:"max_retries"`
	Concurrency  int      `toml:"concurrency"`
}

// NetworkConfig configures the connectivity monitor
type NetworkConfig struct {
	SettleDelay string `toml:"settle_delay"`
}

// NotificationConfig configures the notification center
type NotificationConfig struct {
	DefaultDuration string `toml:"default_duration"`
}

// CalendarConfig configures the timezone event dates are interpreted in
type CalendarConfig struct {
	Timezone string `toml:"timezone"`
}

// TeamsConfig configures team generation
type TeamsConfig struct {
	Max int `toml:"max"`
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return 0, goerr.Wrap(ErrInvalidDuration, "invalid duration in config",
			goerr.V(FieldKey, field), goerr.V(ValueKey, value))
	}
	return d, nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	for _, t := range a.Queue.AllowedTypes {
		if !types.ActionType(t).IsValid() {
			return goerr.Wrap(ErrUnknownAction, "invalid queue config",
				goerr.V(FieldKey, "queue.allowed_types"), goerr.V(ValueKey, t))
		}
	}
	if a.Queue.MaxRetries < 0 {
		return goerr.Wrap(ErrInvalidConfig, "max_retries must not be negative",
			goerr.V(FieldKey, "queue.max_retries"), goerr.V(ValueKey, a.Queue.MaxRetries))
	}
	if a.Queue.Concurrency < 0 {
		return goerr.Wrap(ErrInvalidConfig, "concurrency must not be negative",
			goerr.V(FieldKey, "queue.concurrency"), goerr.V(ValueKey, a.Queue.Concurrency))
	}
	if _, err := parseDuration("network.settle_delay", a.Network.SettleDelay); err != nil {
		return err
	}
	if _, err := parseDuration("notification.default_duration", a.Notification.DefaultDuration); err != nil {
		return err
	}
	if a.Teams.Max < 0 {
		return goerr.Wrap(ErrInvalidConfig, "teams.max must not be negative",
			goerr.V(FieldKey, "teams.max"), goerr.V(ValueKey, a.Teams.Max))
	}
	if a.Calendar.Timezone != "" {
		if _, err := model.NewCalendar(a.Calendar.Timezone); err != nil {
			return goerr.Wrap(ErrInvalidConfig, "unknown timezone",
				goerr.V(FieldKey, "calendar.timezone"), goerr.V(ValueKey, a.Calendar.Timezone))
		}
	}
	return nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "failed to read config file", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// UseCaseOptions turns the file into use case options. Unset values keep their defaults.
func (a *AppConfig) UseCaseOptions() ([]usecase.Option, error) {
	var opts []usecase.Option

	queueOpts := []offline.Option{offline.WithPermanentErrors(usecase.PermanentReplayErrors()...)}
	if len(a.Queue.AllowedTypes) > 0 {
		allowed := make([]types.ActionType, 0, len(a.Queue.AllowedTypes))
		for _, t := range a.Queue.AllowedTypes {
			allowed = append(allowed, types.ActionType(t))
		}
		queueOpts = append(queueOpts, offline.WithAllowedTypes(allowed...))
	}
	if a.Queue.MaxRetries > 0 {
		queueOpts = append(queueOpts, offline.WithMaxRetries(a.Queue.MaxRetries))
	}
	if a.Queue.Concurrency > 0 {
		queueOpts = append(queueOpts, offline.WithConcurrency(a.Queue.Concurrency))
	}
	opts = append(opts, usecase.WithQueue(offline.New(queueOpts...)))

	settle, err := parseDuration("network.settle_delay", a.Network.SettleDelay)
	if err != nil {
		return nil, err
	}
	if settle > 0 {
		opts = append(opts, usecase.WithNetworkMonitor(network.New(network.WithSettleDelay(settle))))
	}

	if a.Notification.DefaultDuration != "" {
		d, err := parseDuration("notification.default_duration", a.Notification.DefaultDuration)
		if err != nil {
			return nil, err
		}
		opts = append(opts, usecase.WithNotificationCenter(notification.New(notification.WithDefaultDuration(d))))
	}

	if a.Calendar.Timezone != "" {
		cal, err := model.NewCalendar(a.Calendar.Timezone)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure calendar")
		}
		opts = append(opts, usecase.WithCalendar(cal))
	}

	if a.Teams.Max > 0 {
		opts = append(opts, usecase.WithMaxTeams(a.Teams.Max))
	}
	if len(a.Admins) > 0 {
		opts = append(opts, usecase.WithAdmins(a.Admins...))
	}

	return opts, nil
}
