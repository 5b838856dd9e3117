package main

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/sea-ice-etl/internal/app"
	"github.com/couchcryptid/sea-ice-etl/internal/config"
	"github.com/couchcryptid/sea-ice-etl/internal/domain"
	"github.com/couchcryptid/sea-ice-etl/internal/observability"
)

// commandContext carries the persistent flags shared by every subcommand.
type commandContext struct {
	configPath string
	input      string
	date       string
	logLevel   string
	sampleStep int
}

// session is everything a subcommand needs for one run.
type session struct {
	cfg       *config.Config
	logger    *slog.Logger
	pipelines app.Pipelines
	input     string
	date      string
}

func (c *commandContext) open(cmd *cobra.Command, args []string) (*session, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}

	if c.sampleStep != 0 {
		cfg.Dataset.SampleStep = c.sampleStep
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	input := cfg.Dataset.Input
	if len(args) > 0 {
		input = args[0]
	}
	if c.input != "" {
		input = c.input
	}
	if input == "" {
		return nil, errors.New("no input file: pass --input or set SEAICE_INPUT")
	}

	date := cfg.Dataset.Date
	if c.date != "" {
		date = c.date
	}

	logger := c.newLogger(cmd, cfg)
	// One-shot runs keep their metrics private; nothing scrapes them.
	metrics := observability.NewMetricsWith(prometheus.NewRegistry())

	return &session{
		cfg:       cfg,
		logger:    logger,
		pipelines: app.NewPipelines(cfg, logger, metrics),
		input:     input,
		date:      date,
	}, nil
}

// newLogger writes to the command's stderr so tests and pipes can capture it.
func (c *commandContext) newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level := cfg.Service.LogLevel
	if c.logLevel != "" {
		level = c.logLevel
	}
	return observability.NewLoggerTo(cmd.ErrOrStderr(), level, logFormat(cmd.ErrOrStderr()))
}

// outputPath picks the explicit flag, then the configured path, then a name
// derived from the input.
func (s *session) outputPath(flag, configured, ext string) string {
	if flag != "" {
		return flag
	}
	if configured != "" {
		return configured
	}
	return domain.DefaultOutputPath(s.cfg.Dataset.OutputDir, s.input, ext)
}

// logFormat is LOG_FORMAT when set, otherwise text on a terminal and json
// everywhere else.
func logFormat(w io.Writer) string {
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		return v
	}
	if f, ok := w.(*os.File); ok {
		fd := f.Fd()
		if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			return "text"
		}
	}
	return "json"
}
