package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/reoring/parseas"
	"github.com/reoring/parseas/internal/config"
	"github.com/reoring/parseas/internal/logging"
	"github.com/reoring/parseas/metrics"
)

// app carries state shared by subcommands for one invocation.
type app struct {
	configPath string
	logLevel   string
	logFile    string
	stats      bool

	cfg      config.Config
	cache    *parseas.Cache
	logger   *slog.Logger
	closeLog func() error
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(args []string) int {
	return execute(args, os.Stdin, os.Stdout, os.Stderr)
}

func execute(args []string, in io.Reader, out, errOut io.Writer) int {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	err := root.Execute()
	a.finish(errOut)
	if err != nil {
		fmt.Fprintln(errOut, "Error:", err)
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "parseas",
		Short:         "Validate documents against Go type expressions",
		Long:          `parseas decodes JSON, YAML or gob input and validates it as a Go type such as []int or map[string][]float64, coercing compatible values.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	// Persistent flags (available to all commands)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "write logs to this rotating file instead of stderr")
	root.PersistentFlags().BoolVar(&a.stats, "stats", false, "print schema cache statistics on exit")

	root.AddCommand(newCheckCmd(a), newSchemaCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.File(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if cmd.Flags().Changed("log-file") {
		cfg.Log.FilePath = a.logFile
	}
	logger, closeLog, err := logging.Setup(cfg.Log)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	cache, err := parseas.NewCache(cfg.CacheSize)
	if err != nil {
		_ = closeLog()
		return err
	}
	a.cfg, a.logger, a.closeLog, a.cache = cfg, logger, closeLog, cache
	parseas.SetLogger(logger)
	logger.Debug("configured", "config", a.configPath, "cache_size", cfg.CacheSize, "jobs", cfg.Jobs)
	return nil
}

// finish prints statistics when requested and releases the log file.
func (a *app) finish(w io.Writer) {
	if a.stats && a.cache != nil {
		if err := writeStats(w, a.cache); err != nil {
			fmt.Fprintln(w, "stats:", err)
		}
	}
	if a.closeLog != nil {
		_ = a.closeLog()
		parseas.SetLogger(nil)
	}
}

func writeStats(w io.Writer, c *parseas.Cache) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(metrics.NewCacheCollector(c, "parseas")); err != nil {
		return err
	}
	mfs, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			v := m.GetGauge().GetValue()
			if m.GetCounter() != nil {
				v = m.GetCounter().GetValue()
			}
			fmt.Fprintf(w, "%s %g\n", mf.GetName(), v)
		}
	}
	return nil
}
