package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vietanh2810/raffle-api/internal/config"
)

var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// Init installs the global zap logger. Production environments log JSON,
// everything else logs in the console format. When conf.File is set, the
// output is also written to a rotated file.
func Init(environment string, conf *config.LogConfig) error {
	zapConf := zap.NewDevelopmentConfig()
	if environment == "production" {
		zapConf = zap.NewProductionConfig()
	}
	zapConf.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if conf != nil && conf.Level != "" {
		if err := SetLevel(conf.Level); err != nil {
			return err
		}
	} else {
		level.SetLevel(zapConf.Level.Level())
	}

	var encoder zapcore.Encoder
	if environment == "production" {
		encoder = zapcore.NewJSONEncoder(zapConf.EncoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(zapConf.EncoderConfig)
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)}
	if conf != nil && conf.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   conf.File,
			MaxSize:    conf.MaxSizeMB,
			MaxBackups: conf.MaxBackups,
			MaxAge:     conf.MaxAgeDays,
			Compress:   true,
		}
		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(rotator), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	zap.ReplaceGlobals(logger)

	return nil
}

// SetLevel changes the level of the global logger at runtime.
func SetLevel(text string) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(text)); err != nil {
		return fmt.Errorf("invalid log level %q -> %w", text, err)
	}

	level.SetLevel(lvl)
	return nil
}

func Level() zapcore.Level {
	return level.Level()
}
