package game

import (
	"github.com/saylorsolutions/dayloop/config"
	"github.com/saylorsolutions/dayloop/patterns/eventbus"
)

// ConfigReloaded is published by the [Coordinator] when the configuration changes while running.
type ConfigReloaded struct {
	eventbus.Meta
	Config config.Config
}

func NewConfigReloaded(conf config.Config) ConfigReloaded {
	return ConfigReloaded{
		Meta:   eventbus.NewMeta(),
		Config: conf,
	}
}
