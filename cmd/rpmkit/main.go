// Command rpmkit inspects, extracts, and builds RPM packages.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meigma/rpm/internal/config"
	"github.com/meigma/rpm/internal/logging"
)

// app carries state shared by every command of one invocation.
type app struct {
	v        *viper.Viper
	cfgFile  string
	cfg      *config.Config
	closeLog func() error
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:                "rpmkit",
		Short:              "Inspect, extract, and build RPM packages",
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "path to config file")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-dir", "", "directory to write JSON log files to")
	pf.Int("concurrency", 0, "packages read at once (default GOMAXPROCS)")
	pf.Uint32("max-header-size", 0, "cap on header data size in bytes")
	pf.Uint64("max-entry-size", 0, "cap on payload entry size in bytes")
	pf.String("compressor", "", "payload compressor to assume when reading")

	for _, name := range []string{"log-level", "log-dir", "concurrency", "max-header-size", "max-entry-size", "compressor"} {
		_ = a.v.BindPFlag(configKey(name), pf.Lookup(name)) //nolint:errcheck // flag exists
	}

	root.AddCommand(
		a.infoCmd(),
		a.lsCmd(),
		a.rpm2cpioCmd(),
		a.extractCmd(),
		a.cpioCmd(),
		a.buildCmd(),
		a.indexCmd(),
	)
	return root
}

func configKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

// setup reads the config file and environment, then installs the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	// Extraction flags are declared per command.
	for _, name := range []string{"overwrite", "owner", "skip-unsafe"} {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.v.BindPFlag(configKey(name), f); err != nil {
				return err
			}
		}
	}

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".config", "rpmkit"))
		}
		a.v.AddConfigPath("/etc/rpmkit")
		a.v.SetConfigName("config")
		a.v.SetConfigType("toml")
	}
	a.v.SetEnvPrefix(config.EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		return fmt.Errorf("could not set up logging: %w", err)
	}
	a.closeLog = closeLog
	if used := a.v.ConfigFileUsed(); used != "" {
		slog.Debug("using config file", "path", used)
	}
	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.closeLog == nil {
		return nil
	}
	return a.closeLog()
}

// createOutput opens name for writing; "-" or "" is w.
func createOutput(name string, w io.Writer) (io.WriteCloser, error) {
	if name == "" || name == "-" {
		return nopCloser{w}, nil
	}
	return os.Create(name)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
