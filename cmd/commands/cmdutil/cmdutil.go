// Package cmdutil holds helpers shared by the ccev subcommands.
package cmdutil

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"nathanbeddoewebdev/ccev/internal/app"
	"nathanbeddoewebdev/ccev/internal/config"
	"nathanbeddoewebdev/ccev/internal/logging"
	"nathanbeddoewebdev/ccev/internal/services/auth"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// LogLevelFlag is the persistent flag registered on the root command.
const LogLevelFlag = "log-level"

// Logger builds the command's logger. The --log-level flag wins over the
// configured level. Logs go to the command's stderr.
func Logger(cmd *cobra.Command) (*logrus.Logger, error) {
	level, _ := cmd.Flags().GetString(LogLevelFlag)
	if strings.TrimSpace(level) == "" {
		if cfg, err := config.Load(); err == nil {
			level = cfg.LogLevel
		}
	}
	return logging.NewWithOutput(cmd.ErrOrStderr(), level)
}

// OpenApp wires the application for cmd. Offline skips the site database,
// Redis and WP-CLI connections.
func OpenApp(cmd *cobra.Command, offline bool) (*app.App, error) {
	log, err := Logger(cmd)
	if err != nil {
		return nil, err
	}
	return app.Open(cmd.Context(), app.Options{Log: log, Auth: auth.DefaultStore(), Offline: offline})
}

// OutputFormat reads and checks the -o flag.
func OutputFormat(cmd *cobra.Command, allowed ...string) (string, error) {
	output, _ := cmd.Flags().GetString("output")
	output = strings.ToLower(strings.TrimSpace(output))
	if output == "" {
		output = allowed[0]
	}
	for _, a := range allowed {
		if output == a {
			return output, nil
		}
	}
	return "", fmt.Errorf("unsupported output format %q (valid: %s)", output, strings.Join(allowed, ", "))
}

// PrintJSON writes v as indented JSON to the command's stdout.
func PrintJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// IsInteractive reports whether the command writes to a terminal.
func IsInteractive(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Accessible reports whether huh forms should run in accessible mode.
func Accessible() bool {
	return os.Getenv("ACCESSIBLE") != ""
}
