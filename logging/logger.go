package logging

import (
	"os"

	"github.com/pkg/errors"
	"github.com/xhs-publisher/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New 根据配置创建日志器：终端输出 + 可选的滚动日志文件（JSON）
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	return NewWithWriter(cfg, zapcore.Lock(os.Stderr))
}

// NewWithWriter 与 New 相同，但终端输出写到指定 writer
func NewWithWriter(cfg config.LoggingConfig, console zapcore.WriteSyncer) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, errors.Wrapf(err, "无效的日志级别 %q", cfg.Level)
		}
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder(cfg.Format), console, level),
	}

	if cfg.File != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
		cores = append(cores, zapcore.NewCore(encoder("json"), fileWriter, level))
	}

	// 只有 DPanic 以上附带堆栈
	return zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zap.DPanicLevel)).Named("xhs"), nil
}

func encoder(format string) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")

	if format == "json" {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewJSONEncoder(encoderConfig)
	}

	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeCaller = nil
	return zapcore.NewConsoleEncoder(encoderConfig)
}

// OrNop 组件接收可选的日志器
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
