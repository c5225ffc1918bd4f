// This is a wrapper for the zap framework
// no SugerLogger, Only Logger
// example:
//
//	log.Init("./logs/tcpscan.log", false)
//	log.Log().Info("scan started", zap.String("host", host))
package log

import (
	"os"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	defaultLogFileName = "./logs/tcpscan.log"

	defaultLevel = zapcore.InfoLevel

	log *zap.Logger

	logOnce sync.Once
)

// Init sets the log file and level. It only has an effect before the first
// call to Log.
func Init(filename string, debug bool) {
	if filename != "" {
		defaultLogFileName = filename
	}
	if debug {
		defaultLevel = zapcore.DebugLevel
	}
}

// singleton pattern
func Log() *zap.Logger {
	logOnce.Do(func() {
		core := zapcore.NewCore(getEncoder(), getLogWriter(), defaultLevel)
		log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(0))
	})
	return log
}

// Sync flushes buffered entries.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

func Debug(msg string, fields ...zap.Field) {
	Log().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	Log().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Log().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Log().Error(msg, fields...)
}

func getEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.LineEnding = zapcore.DefaultLineEnding
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	encoderConfig.EncodeTime = timeEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	encoderConfig.EncodeName = zapcore.FullNameEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05"))
}

func getLogWriter() zapcore.WriteSyncer {
	lumberJackLogger := &lumberjack.Logger{
		Filename:   defaultLogFileName,
		MaxSize:    60,
		MaxBackups: 6,
		MaxAge:     60,
		Compress:   false,
	}
	if os.Getenv("TCPSCAN_LOG_STDOUT") == "1" {
		return zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout), zapcore.AddSync(lumberJackLogger))
	}
	return zapcore.AddSync(lumberJackLogger)
}
