package app

import (
	"sulytrack/internal/config"
	"sulytrack/internal/logx"
)

// NewLogger builds the production JSON logger at the configured level.
func NewLogger(cfg *config.Config) (logx.Logger, error) {
	return logx.NewZap("sulytrack", cfg.LogLevel)
}
