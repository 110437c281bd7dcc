// Package cli implements the takeoff command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/takeoff/internal/logging"
	"github.com/mesh-intelligence/takeoff/internal/paths"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
}

// app carries the state shared by every subcommand of one invocation.
type app struct {
	flags     rootFlags
	configDir string
	settings  settings
	logger    *zap.Logger
	logOut    io.Writer
}

// NewRootCmd creates the top-level "takeoff" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop(), logOut: os.Stderr}

	root := &cobra.Command{
		Use:   "takeoff",
		Short: "Color-driven construction quantity takeoff",
		Long: "Takeoff keeps boundaries with version-dependent color palettes, maps\n" +
			"colors to materials and costs, and feeds quantities into a spreadsheet.",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newBoundaryCmd(a),
		newPlanCmd(a),
		newColorCmd(a),
		newQuantitiesCmd(a),
		newExportCmd(a),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// setup resolves the config directory, loads config.yaml and builds the
// logger. Flags win over config values.
func (a *app) setup() error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return systemError(fmt.Errorf("resolve config dir: %w", err))
	}
	s, err := loadSettings(configDir)
	if err != nil {
		return systemError(err)
	}
	if a.flags.logLevel != "" {
		s.LogLevel = a.flags.logLevel
	}

	lc := logging.Config{Level: s.LogLevel, Format: s.LogFormat, Output: s.LogOutput}
	var logger *zap.Logger
	if lc.Output == "" || lc.Output == "stderr" {
		logger, err = logging.NewWithWriter(lc, a.logOut)
	} else {
		logger, err = logging.New(lc)
	}
	if err != nil {
		return err
	}

	a.configDir = configDir
	a.settings = s
	a.logger = logger
	a.logger.Debug("configuration loaded", zap.String("config_dir", configDir))
	return nil
}

// sysError marks an error caused by the environment rather than the input.
type sysError struct{ err error }

func (e *sysError) Error() string { return e.err.Error() }
func (e *sysError) Unwrap() error { return e.err }

func systemError(err error) error {
	if err == nil {
		return nil
	}
	return &sysError{err: err}
}

// exitCode maps an error to the process exit code: system failures exit 2,
// everything else is a user error.
func exitCode(err error) int {
	var se *sysError
	if errors.As(err, &se) {
		return exitSysError
	}
	return exitUserError
}
