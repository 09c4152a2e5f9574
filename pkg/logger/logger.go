package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is a no-op logger until InitLogger runs, so packages can log from tests.
var Log = zap.NewNop()

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

type Config struct {
	Level string
	// Format is FormatJSON or FormatConsole. Empty means JSON.
	Format     string
	Filename   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// InitLogger replaces Log. An empty Filename logs to stdout only; otherwise
// entries also go to a rotated file, always JSON encoded.
func InitLogger(cfg *Config) error {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	stdoutEncoder, err := newEncoder(cfg.Format)
	if err != nil {
		return err
	}

	cores := []zapcore.Core{
		zapcore.NewCore(stdoutEncoder, zapcore.Lock(os.Stdout), level),
	}
	if cfg.Filename != "" {
		jsonEncoder, _ := newEncoder(FormatJSON)
		cores = append(cores, zapcore.NewCore(jsonEncoder, fileSyncer(cfg), level))
	}

	Log = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	zap.ReplaceGlobals(Log)
	return nil
}

func newEncoder(format string) (zapcore.Encoder, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	switch strings.ToLower(format) {
	case "", FormatJSON:
		return zapcore.NewJSONEncoder(encoderConfig), nil
	case FormatConsole:
		return zapcore.NewConsoleEncoder(encoderConfig), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func fileSyncer(cfg *Config) zapcore.WriteSyncer {
	return &zapcore.BufferedWriteSyncer{
		WS: zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}),
		Size:          256 * 1024,
		FlushInterval: 5 * time.Second,
	}
}

// Sync flushes buffered entries, including the file buffer.
func Sync() {
	_ = Log.Sync()
}
