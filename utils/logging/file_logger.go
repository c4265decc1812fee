package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultFilename = "packs.log"

// Rotation bounds the on-disk footprint of a file logger. Zero fields take the
// defaults.
type Rotation struct {
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

func (r Rotation) withDefaults() Rotation {
	cpy := r
	if cpy.MaxSize == 0 {
		cpy.MaxSize = 50 // megabytes per file before rotation
	}
	if cpy.MaxBackups == 0 {
		cpy.MaxBackups = 5
	}
	if cpy.MaxAge == 0 {
		cpy.MaxAge = 14 // days
	}
	return cpy
}

func NewRotatingFileLogger(
	debug bool,
	dir string,
	filename string,
	rotation Rotation,
) (
	*zap.Logger,
	io.Closer,
	error,
) {
	if dir == "" {
		dir = "./logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, errors.Wrap(err, "new rotating file logger")
	}

	if filename == "" {
		filename = defaultFilename
	}

	rotation = rotation.withDefaults()
	rot := &lumberjack.Logger{
		Filename:   filepath.Join(dir, filename),
		MaxSize:    rotation.MaxSize,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAge,
		Compress:   rotation.Compress,
	}

	encCfg := zap.NewProductionEncoderConfig()
	level := zap.InfoLevel
	if debug {
		encCfg = zap.NewDevelopmentEncoderConfig()
		level = zap.DebugLevel
	}
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	enc := zapcore.NewConsoleEncoder(encCfg)

	core := zapcore.NewCore(enc, zapcore.AddSync(rot), level)
	logger := zap.New(core, zap.AddCaller())

	return logger, rot, nil
}
