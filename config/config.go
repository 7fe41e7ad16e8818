package config

import (
	"lever/core"

	"github.com/asaskevich/govalidator"
	"github.com/fox-one/pkg/config"
)

// Load load config file
func Load(cfgFile string, cfg *core.Config) error {
	config.AutomaticLoadEnv("LEVER")
	if err := config.LoadYaml(cfgFile, cfg); err != nil {
		return err
	}

	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		return err
	}

	defaults(cfg)
	return nil
}

func defaults(cfg *core.Config) {
	if cfg.App.MinAccrualGapSeconds <= 0 {
		cfg.App.MinAccrualGapSeconds = 60
	}

	if cfg.Oracle.PullIntervalSeconds <= 0 {
		cfg.Oracle.PullIntervalSeconds = 5
	}

	if cfg.Notifier.Batch <= 0 {
		cfg.Notifier.Batch = 100
	}
}
