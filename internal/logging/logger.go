package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Fields carries structured context for a log line.
type Fields map[string]interface{}

var base = newLogger("")

// Init reconfigures the process logger to also write rotated JSON logs to
// the given file. An empty path keeps stdout-only logging.
func Init(logFile string) {
	base = newLogger(logFile)
}

func newLogger(logFile string) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.MessageKey = "msg"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	enc := zapcore.NewJSONEncoder(encCfg)

	var sink zapcore.WriteSyncer = zapcore.AddSync(os.Stdout)
	if logFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		}
		sink = zapcore.NewMultiWriteSyncer(sink, zapcore.AddSync(rotated))
	}
	return zap.New(zapcore.NewCore(enc, sink, zapcore.InfoLevel))
}

func zapFields(err error, fields Fields) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+1)
	if err != nil {
		out = append(out, zap.String("error", err.Error()))
	}
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

// Info logs an informational message with optional fields.
func Info(msg string, fields Fields) {
	base.Info(msg, zapFields(nil, fields)...)
}

// Warn logs a warning and includes the error text in the fields.
func Warn(msg string, err error, fields Fields) {
	base.Warn(msg, zapFields(err, fields)...)
}

// Error logs an error message and includes the error text in the fields.
func Error(msg string, err error, fields Fields) {
	base.Error(msg, zapFields(err, fields)...)
}

// Fatal logs a fatal error and exits the process.
func Fatal(msg string, err error, fields Fields) {
	base.Fatal(msg, zapFields(err, fields)...)
}
