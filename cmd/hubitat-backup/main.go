package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	_ "github.com/joho/godotenv/autoload"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tomasz-wiszkowski/hubitat-backup/internal/hubsdk"
	"github.com/tomasz-wiszkowski/hubitat-backup/internal/mirror"
	"github.com/tomasz-wiszkowski/hubitat-backup/internal/utils"
	"github.com/tomasz-wiszkowski/hubitat-backup/internal/version"
)

var cyan = color.New(color.FgHiCyan).SprintFunc()

var rootCmd = &cobra.Command{
	Use:   "hubitat-backup <ip> <mac> <destination-dir>",
	Short: "Mirror a Hubitat hub's backups into a local directory",
	Long: `Downloads the configuration backups a Hubitat hub has taken and mirrors
them into a local directory, then deletes mirrored backups older than the
retention window.

Backups must be enabled on the hub first, under http://<hub-ip>/hub/backup.
The hub's MAC address acts as the sole credential for its diagnostic
service. The tool runs once and exits; schedule it from cron or a systemd
timer.`,
	Example: "  hubitat-backup 192.168.1.100 34:e1:d1:00:11:22 ~/backups/hubitat -a 7",
	Args:    cobra.ExactArgs(3),
	Version: version.Short(),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		bindConfig(cmd)
		return setupLogger(viper.GetString("log_level"))
	},
	RunE: runBackup,
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().IntP("max-age-days", "a", mirror.DefaultMaxAgeDays, "delete mirrored backups older than this many days")
	rootCmd.Flags().Duration("timeout", hubsdk.DefaultTimeout, "per-request timeout talking to the hub")
	rootCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().Bool("no-lock", false, "do not lock the destination directory for the run")
}

func runBackup(cmd *cobra.Command, args []string) error {
	host, mac, dest := args[0], args[1], args[2]

	if _, _, err := net.SplitHostPort(host); err == nil {
		return fmt.Errorf("hub address %q must not include a port; the diagnostic service always listens on %s", host, hubsdk.DiagnosticPort)
	}

	// viper coerces malformed env values to zero instead of failing
	rawAge := viper.GetString("max_age_days")
	maxAge, err := strconv.Atoi(rawAge)
	if err != nil {
		return fmt.Errorf("max age must be a whole number of days, got %q", rawAge)
	}
	if maxAge < 0 {
		return fmt.Errorf("max age must be >= 0, got %d", maxAge)
	}

	rawTimeout := viper.GetString("timeout")
	timeout, err := time.ParseDuration(rawTimeout)
	if err != nil {
		return fmt.Errorf("timeout must be a duration, got %q", rawTimeout)
	}

	destDir, err := utils.ResolvePath(dest)
	if err != nil {
		return fmt.Errorf("resolve destination %q: %w", dest, err)
	}

	sdk, err := hubsdk.New(&hubsdk.Config{
		Host:    host,
		MAC:     mac,
		Timeout: timeout,
	})
	if err != nil {
		return err
	}

	// arguments are good, errors past this point are operational
	cmd.SilenceUsage = true

	slog.Info("hubitat-backup", "version", version.Version, "revision", version.Revision, "build", version.BuildDate)
	fmt.Fprintln(cmd.OutOrStdout(), cyan(fmt.Sprintf(
		"Mirroring backups of hub %s to %s, removing files older than %d days", host, destDir, maxAge)))

	m := mirror.New(sdk, destDir, mirror.Options{
		MaxAgeDays: maxAge,
		DirLock:    !viper.GetBool("no_lock"),
	})

	res, err := m.Run(cmd.Context())
	if errors.Is(err, mirror.ErrNoBackups) {
		return fmt.Errorf("%w; enable them at http://%s/hub/backup", err, host)
	}
	if res != nil {
		slog.Info("run finished",
			"listed", res.Listed,
			"downloaded", res.Downloaded,
			"skipped", res.Skipped,
			"pruned", res.Pruned,
			"fetched", humanize.Bytes(uint64(res.TotalBytes)),
		)
	}
	return err
}

func bindConfig(cmd *cobra.Command) {
	viper.BindPFlag("max_age_days", cmd.Flags().Lookup("max-age-days"))
	viper.BindPFlag("timeout", cmd.Flags().Lookup("timeout"))
	viper.BindPFlag("log_level", cmd.Flags().Lookup("log-level"))
	viper.BindPFlag("no_lock", cmd.Flags().Lookup("no-lock"))

	viper.SetEnvPrefix("HUBITAT_BACKUP")
	viper.AutomaticEnv()
}

func setupLogger(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("unknown log level %q", level)
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
