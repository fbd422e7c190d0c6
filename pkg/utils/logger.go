package utils

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerConfig - минимальный набор параметров, необходимых для сборки логгера;
// зеркалит internal/config.LoggingConfig, чтобы pkg/utils не зависел от internal.
type LoggerConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// NewLogger собирает *zap.Logger по конфигурации: JSON в проде, console в dev.
func NewLogger(cfg LoggerConfig) (*zap.Logger, error) {
	level := parseLevel(cfg.Level)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if strings.EqualFold(cfg.Format, "console") {
		consoleCfg := zap.NewDevelopmentEncoderConfig()
		consoleCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewConsoleEncoder(consoleCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stdout)), level)
	return zap.New(core, zap.AddCaller()), nil
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// PassFields строит стандартный набор полей, которыми снабжается каждая
// строка лога внутри одного прохода, чтобы строки одного pass_id можно
// было выгрести одним grep.
func PassFields(passID, conditionID, stage string) []zap.Field {
	fields := make([]zap.Field, 0, 3)
	if passID != "" {
		fields = append(fields, zap.String("pass_id", passID))
	}
	if conditionID != "" {
		fields = append(fields, zap.String("condition_id", conditionID))
	}
	if stage != "" {
		fields = append(fields, zap.String("stage", stage))
	}
	return fields
}
