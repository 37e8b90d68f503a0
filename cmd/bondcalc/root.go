package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meenmo/fisolve/config"
)

// errBatchFailed is returned when at least one element produced an error.
// The errors themselves are reported in the JSON output.
var errBatchFailed = errors.New("one or more inputs failed")

// app carries state shared by the subcommands.
type app struct {
	ctx    context.Context
	v      *viper.Viper
	cfg    config.Config
	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: logrus.New()}

	root := &cobra.Command{
		Use:           "bondcalc",
		Short:         "Bond yield, price and spread solver",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "settings file (YAML, JSON or TOML)")
	flags.String("input", "", "JSON input path (reads stdin if omitted)")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("policy", "", "iteration cap policy: best-effort or fail")
	flags.Int("max-iterations", 0, "Brent iteration cap")
	flags.String("format", "json", "output format: json or yaml")

	_ = a.v.BindPFlag("config", flags.Lookup("config"))
	_ = a.v.BindPFlag("input", flags.Lookup("input"))
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("format", flags.Lookup("format"))

	// Solver overrides only apply when set, so the file and environment
	// keep working for the rest.
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if f := flags.Lookup("policy"); f.Changed {
			a.v.Set("policy", f.Value.String())
		}
		if f := flags.Lookup("max-iterations"); f.Changed {
			a.v.Set("max_iterations", f.Value.String())
		}
		a.ctx = cmd.Context()
		if a.ctx == nil {
			a.ctx = context.Background()
		}
		return a.init(cmd.ErrOrStderr())
	}

	root.AddCommand(
		newYieldCmd(a),
		newPriceCmd(a),
		newZSpreadCmd(a),
		newFwdYieldCmd(a),
		newASWCmd(a),
		newFuturesCmd(a),
		newHoldingCmd(a),
		newValueCmd(a),
	)
	return root
}

func (a *app) init(stderr io.Writer) error {
	a.logger.SetOutput(stderr)
	a.logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	switch strings.ToLower(a.v.GetString("log_level")) {
	case "debug":
		a.logger.SetLevel(logrus.DebugLevel)
	case "info":
		a.logger.SetLevel(logrus.InfoLevel)
	case "error":
		a.logger.SetLevel(logrus.ErrorLevel)
	default:
		a.logger.SetLevel(logrus.WarnLevel)
	}

	switch strings.ToLower(a.v.GetString("format")) {
	case "json", "yaml":
	default:
		return fmt.Errorf("unsupported format %q", a.v.GetString("format"))
	}

	cfg, err := config.LoadWith(a.v, a.v.GetString("config"))
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	a.cfg = cfg
	return nil
}
