package events

import "github.com/dshills/keystorm/internal/event/topic"

// Configuration event topics.
const (
	// TopicConfigReloaded is published after the config file changes on
	// disk and reloads successfully.
	TopicConfigReloaded topic.Topic = "config.reloaded"

	// TopicConfigError is published when a changed config file fails to
	// parse or validate; the previous configuration stays in effect.
	TopicConfigError topic.Topic = "config.error"
)

// ConfigReloaded carries the path of the reloaded file. Subscribers fetch
// the new configuration from the watcher to avoid copying it through every
// event queue.
type ConfigReloaded struct {
	Path string
}

// ConfigError carries a reload failure.
type ConfigError struct {
	Path string
	Err  string
}
