package config

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/simp-lee/logger"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

var logFormats = map[string]logger.OutputFormat{
	"text": logger.FormatText,
	"json": logger.FormatJSON,
}

// SetupLogger builds the process logger from cfg and makes it slog.Default.
// The caller owns Close().
func SetupLogger(cfg *LogConfig) (*logger.Logger, error) {
	if cfg == nil {
		return nil, errors.New("log config is nil")
	}
	log, err := logger.New(BuildLoggerOpts(cfg)...)
	if err != nil {
		return nil, err
	}
	log.SetDefault()
	return log, nil
}

// BuildLoggerOpts translates cfg into logger options. Console output is
// always on; file output only with a file path. Nil cfg yields nil.
func BuildLoggerOpts(cfg *LogConfig) []logger.Option {
	if cfg == nil {
		return nil
	}
	format := parseFormat(cfg.Format)
	opts := []logger.Option{
		logger.WithLevel(parseLevel(cfg.Level)),
		logger.WithMiddleware(logger.ContextMiddleware()),
		logger.WithConsoleFormat(format),
		logger.WithConsoleColor(cfg.Color == nil || *cfg.Color),
	}
	return append(opts, fileOpts(cfg, format)...)
}

func fileOpts(cfg *LogConfig, format logger.OutputFormat) []logger.Option {
	if cfg.FilePath == "" {
		return nil
	}
	opts := []logger.Option{logger.WithFilePath(cfg.FilePath), logger.WithFileFormat(format)}
	if cfg.MaxSizeMB > 0 {
		opts = append(opts, logger.WithMaxSizeMB(cfg.MaxSizeMB))
	}
	if cfg.RetentionDays > 0 {
		opts = append(opts, logger.WithRetentionDays(cfg.RetentionDays))
	}
	if cfg.MaxBackups > 0 {
		opts = append(opts, logger.WithMaxBackups(cfg.MaxBackups))
	}
	if cfg.CompressRotated != nil {
		opts = append(opts, logger.WithCompressRotated(*cfg.CompressRotated))
	}
	return opts
}

// parseFormat falls back to the custom console format.
func parseFormat(s string) logger.OutputFormat {
	if f, ok := logFormats[normalizeName(s)]; ok {
		return f
	}
	return logger.FormatCustom
}

func parseLevel(s string) slog.Level {
	if l, ok := logLevels[normalizeName(s)]; ok {
		return l
	}
	return slog.LevelInfo
}

func normalizeName(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
