package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// getWriteSyncer creates the output sink for a logger: a size-rotated file
// under config.Director, optionally teed to stdout.
func getWriteSyncer(config Config) zapcore.WriteSyncer {
	_ = os.MkdirAll(config.Director, 0755)

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(config.Director, "panel.log"),
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
		LocalTime:  true,
	}

	if config.LogInTerminal {
		return zapcore.NewMultiWriteSyncer(
			zapcore.AddSync(os.Stdout),
			zapcore.AddSync(fileWriter),
		)
	}
	return zapcore.AddSync(fileWriter)
}
