package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/jandubois/check-zpools/internal/config"
	"github.com/jandubois/check-zpools/internal/logging"
	"github.com/jandubois/check-zpools/internal/probe"
	"github.com/jandubois/check-zpools/internal/probes"
	"github.com/jandubois/check-zpools/internal/probes/zpools"
	"github.com/spf13/cobra"
)

func runCheck(cmd *cobra.Command, exitCode *int) error {
	if v, _ := cmd.Flags().GetBool("version"); v {
		fmt.Fprintf(cmd.OutOrStdout(), "check_zpools version %s\n", Version)
		*exitCode = 0
		return nil
	}
	if describe, _ := cmd.Flags().GetBool("describe"); describe {
		*exitCode = 0
		return json.NewEncoder(cmd.OutOrStdout()).Encode(probes.GetAllDescriptions())
	}
	if cmd.Flags().NFlag() == 0 {
		return cmd.Help()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return err
	}

	src, err := newSource(cfg.ZpoolPath, logger)
	if err != nil {
		if hint := errors.FlattenHints(err); hint != "" {
			logger.Warn(hint)
		}
		return err
	}

	slog.Debug("checking pools",
		"pool", cfg.Pool,
		"thresholds", cfg.Thresholds() != nil,
		"soft_fail", cfg.SoftFail,
	)

	result := zpools.Run(cmd.Context(), src, cfg)
	*exitCode = report(cmd.OutOrStdout(), result, cfg.SoftFail)
	return nil
}

// loadConfig reads the optional config file and applies every flag set on
// the command line on top of it.
func loadConfig(cmd *cobra.Command) (*config.CheckConfig, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("pool") {
		cfg.Pool, _ = flags.GetString("pool")
	}
	if flags.Changed("warning") {
		w, _ := flags.GetInt("warning")
		cfg.Warning = &w
	}
	if flags.Changed("critical") {
		c, _ := flags.GetInt("critical")
		cfg.Critical = &c
	}
	if flags.Changed("soft-fail") {
		cfg.SoftFail, _ = flags.GetBool("soft-fail")
	}
	if flags.Changed("zpool") || cfg.ZpoolPath == "" {
		cfg.ZpoolPath, _ = flags.GetString("zpool")
	}
	if flags.Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	return cfg, nil
}

// report writes the status line and returns the exit code for it.
func report(w io.Writer, result *probe.Result, softFail bool) int {
	fmt.Fprintln(w, result.Line())
	return result.Status.ExitCode(softFail)
}
