package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/jandubois/check-zpools/internal/probe"
	"github.com/jandubois/check-zpools/internal/zpool"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X github.com/jandubois/check-zpools/cmd.Version=..."
var Version = "dev"

// newSource builds the pool data source for a run.
var newSource = func(zpoolPath string, logger *slog.Logger) (zpool.Source, error) {
	if err := setSearchPath(os.Getenv("PATH")); err != nil {
		return nil, err
	}
	path, err := zpool.LookupBinary(zpoolPath)
	if err != nil {
		return nil, err
	}
	return zpool.NewClient(path, zpool.ExecRunner{}, logger), nil
}

// setSearchPath exports path, extended with the system binary directories, as PATH.
func setSearchPath(path string) error {
	if err := os.Setenv("PATH", zpool.AugmentPath(path)); err != nil {
		return errors.Wrap(err, "set PATH")
	}
	return nil
}

// Execute runs the check and returns the process exit code.
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	// Help and usage output leave the code at UNKNOWN.
	exitCode := probe.StatusUnknown.ExitCode(false)

	if args == nil {
		args = []string{}
	}

	rootCmd := newRootCmd(&exitCode)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		result := probe.Unknown("%v", err)
		fmt.Fprintln(stdout, result.Line())
		return result.Status.ExitCode(false)
	}
	return exitCode
}

func newRootCmd(exitCode *int) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "check_zpools",
		Short: "Check health and capacity of ZFS pools",
		Long: `check_zpools reports the health, capacity and hot spare usage of one or
all ZFS pools as a single monitoring plugin status line.

Exit codes: 0 OK, 1 WARNING, 2 CRITICAL, 3 UNKNOWN.`,
		Example: `  check_zpools -p ALL -w 80 -c 90
  check_zpools -p tank
  check_zpools -p tank -w 85 -c 95 -s`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, exitCode)
		},
	}

	rootCmd.Flags().StringP("pool", "p", "", "Pool name, or ALL for every pool")
	rootCmd.Flags().IntP("warning", "w", 0, "Warning capacity percentage (requires --critical)")
	rootCmd.Flags().IntP("critical", "c", 0, "Critical capacity percentage (requires --warning)")
	rootCmd.Flags().BoolP("soft-fail", "s", false, "Exit with the WARNING code on CRITICAL results")
	rootCmd.Flags().String("config", "", "YAML file with default settings")
	rootCmd.Flags().String("zpool", "zpool", "zpool binary name or path")
	rootCmd.Flags().String("log-level", "warn", "Log level on stderr (debug, info, warn, error)")
	rootCmd.Flags().BoolP("version", "v", false, "Print version and exit")
	rootCmd.Flags().Bool("describe", false, "Output the probe description as JSON")

	return rootCmd
}
