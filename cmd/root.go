package cmd

import (
	"os"

	"nathanbeddoewebdev/ccev/cmd/commands/actions"
	"nathanbeddoewebdev/ccev/cmd/commands/auth"
	clearcmd "nathanbeddoewebdev/ccev/cmd/commands/clear"
	"nathanbeddoewebdev/ccev/cmd/commands/cmdutil"
	cfgcmd "nathanbeddoewebdev/ccev/cmd/commands/config"
	"nathanbeddoewebdev/ccev/cmd/commands/history"
	"nathanbeddoewebdev/ccev/cmd/commands/serve"
	"nathanbeddoewebdev/ccev/cmd/commands/token"
	"nathanbeddoewebdev/ccev/internal/clearers"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "ccev",
		Short: "Clear every cache a WordPress site uses, from one place",
		Long: `ccev clears the caches around a WordPress site: rewrite rules, the
object cache, transients, sessions, Redis and Memcached, OPcache, Varnish,
the hosting provider's cache, Cloudflare and the caches of active caching
plugins. Each action can be switched on or off, and the outcome of every
action is stored for later inspection.

Quick start:
  ccev config set site-url https://example.com
  ccev config set db-dsn user:pass@127.0.0.1:3306/wordpress
  ccev actions list                # What will run
  ccev clear                       # Run every enabled action
  ccev token issue                 # Print a trigger link
  ccev serve                       # Serve trigger links and the API`,
	}

	cmd.PersistentFlags().String(cmdutil.LogLevelFlag, "", "Log level: debug, info, warn, error (default: log-level setting, else warn)")

	cmd.AddCommand(clearcmd.NewCommand())
	cmd.AddCommand(actions.NewCommand())
	cmd.AddCommand(actions.ResultsCommand())
	cmd.AddCommand(auth.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())
	cmd.AddCommand(history.NewCommand())
	cmd.AddCommand(token.NewCommand())
	cmd.AddCommand(serve.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	clearers.RegisterBuiltins()

	var root = rootCmd()
	err := root.Execute()
	if err != nil {
		os.Exit(1)
	}
}
