package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/lattice/internal/config"
	"github.com/vango-dev/lattice/internal/errors"
	"github.com/vango-dev/lattice/pkg/telemetry"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬  ┌─┐┌┬┐┌┬┐┬┌─┐┌─┐
  │  ├─┤ │  │ ││  ├┤
  ┴─┘┴ ┴ ┴  ┴ ┴└─┘└─┘
`

// app holds the state shared by all commands.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "lattice",
		Short: "Render, verify and serve lazy dual-representation node trees",
		Long: `Lattice builds UI trees that stay virtual until they have to be real.

Pages are rendered on dry trees that never touch a surface, served over
HTTP, hydrated against server markup and kept live over a websocket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to lattice.json (default: search from the working directory)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(
		renderCmd(a),
		verifyCmd(a),
		serveCmd(a),
		exportCmd(a),
		versionCmd(),
	)
	return rootCmd
}

// load reads the configuration and installs the default logger.
func (a *app) load(logOut io.Writer) error {
	var err error
	switch {
	case a.configPath != "":
		a.cfg, err = config.LoadFile(a.configPath)
	default:
		a.cfg, err = config.LoadFromWorkingDir()
		if errors.HasCode(err, "E141") {
			a.cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		a.cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		a.cfg.Log.Format = a.logFormat
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	a.logger, err = telemetry.NewLogger(a.cfg.Log.Format, a.cfg.Log.Level, logOut)
	if err != nil {
		return errors.New("E122").Wrap(err)
	}
	slog.SetDefault(a.logger)
	return nil
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
