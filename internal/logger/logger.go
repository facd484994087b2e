package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It discards everything until Init runs,
// so packages and tests can log unconditionally.
var Log = zap.NewNop().Sugar()

// Output formats accepted by Init.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options selects level, destination and encoding of the global logger.
type Options struct {
	Verbose bool
	// Path, when set, receives the logs instead of stderr. The file is truncated.
	Path string
	// Format is FormatConsole (default) or FormatJSON. JSON suits the
	// long-running server, where access lines are shipped to a collector.
	Format string
}

// Init replaces Log according to opts. An unknown format or an unwritable
// file falls back to colored console output on stderr and is reported there.
func Init(opts Options) {
	var warnings []string

	format := opts.Format
	if format == "" {
		format = FormatConsole
	}
	if format != FormatConsole && format != FormatJSON {
		warnings = append(warnings, fmt.Sprintf("unknown log format %q, using console", format))
		format = FormatConsole
	}

	var writer zapcore.WriteSyncer
	toFile := false
	if opts.Path != "" {
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to create log file: %v", err))
		} else {
			writer = zapcore.AddSync(f)
			toFile = true
		}
	}
	if writer == nil {
		// stdout stays free for yaml output
		writer = zapcore.Lock(zapcore.AddSync(os.Stderr))
	}

	level := zap.InfoLevel
	if opts.Verbose {
		level = zap.DebugLevel
	}

	Log = zap.New(zapcore.NewCore(newEncoder(format, toFile), writer, level)).Sugar()
	for _, w := range warnings {
		Log.Warn(w)
	}
}

func newEncoder(format string, toFile bool) zapcore.Encoder {
	if format == FormatJSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeDuration = zapcore.StringDurationEncoder
		return zapcore.NewJSONEncoder(cfg)
	}

	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.EncodeCaller = nil
	// No color codes in files
	if toFile {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return zapcore.NewConsoleEncoder(cfg)
}

// Sync flushes any buffered log entries.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
