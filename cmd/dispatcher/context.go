package main

import (
	"github.com/kursadbilgin/notification-dispatcher/internal/config"
	"github.com/kursadbilgin/notification-dispatcher/internal/observability"
	"go.uber.org/zap"
)

const serviceName = "notification-dispatcher"

type commandContext struct {
	cfg    *config.Config
	logger *zap.Logger
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) ensureLogger() (*zap.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}

	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	logger, err := observability.NewLogger(cfg.LogLevel, serviceName)
	if err != nil {
		return nil, err
	}
	c.logger = logger
	return logger, nil
}
