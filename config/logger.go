package config

import (
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/utils/logging"
)

type LogConfig struct {
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"maxSize"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAge     int    `yaml:"maxAge"`
	Compress   bool   `yaml:"compress"`
}

func (c *Config) CreateLogger(debug bool) (
	*zap.Logger,
	io.Closer,
	error,
) {
	filename := c.LogFile
	if filename != "" || c.Logger != nil {
		dir := ""
		rotation := logging.Rotation{}
		if c.Logger != nil {
			dir = c.Logger.Path
			rotation = logging.Rotation{
				MaxSize:    c.Logger.MaxSize,
				MaxBackups: c.Logger.MaxBackups,
				MaxAge:     c.Logger.MaxAge,
				Compress:   c.Logger.Compress,
			}
		}

		logger, closer, err := logging.NewRotatingFileLogger(
			debug,
			dir,
			filename,
			rotation,
		)
		return logger, closer, errors.Wrap(err, "create logger")
	}

	var logger *zap.Logger
	var err error
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}

	return logger, io.NopCloser(nil), errors.Wrap(err, "create logger")
}
