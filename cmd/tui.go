// ABOUTME: Interactive terminal UI command
// ABOUTME: Wires config, session, catalog cache and file logging into the TUI

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/schaidule/schaidule-cli/internal/catalog"
	"github.com/schaidule/schaidule-cli/internal/logger"
	"github.com/schaidule/schaidule-cli/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive terminal UI",
	Long: `Start the interactive terminal UI for logging in, editing your profile
and generating schedules. Logs are written to debug.log in the config directory.

Running schaidule without a command starts the UI when attached to a terminal.`,
	Run: func(cmd *cobra.Command, args []string) {
		if exitCode := runTUI(os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		if !interactive() {
			cmd.Help()
			return
		}
		if exitCode := runTUI(os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	}
}

func interactive() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// runTUI runs the terminal UI until the user quits, returning exit code
func runTUI(w io.Writer) int {
	a, err := openApp()
	if err != nil {
		return failure(w, err, "")
	}
	defer a.Close()

	// Anything written to stderr would corrupt the alt screen
	closer, err := logger.InitFile(a.cfg.Dir, a.cfg.LogLevel, a.cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(w, "Warning: %v\n", err)
	} else {
		defer closer.Close()
	}

	err = tui.Run(tui.Deps{
		API:     a.api,
		Session: a.session,
		Catalog: catalog.New(a.api, a.session),
		Config:  a.cfg,
	})
	if err != nil {
		return failure(w, err, "")
	}
	return 0
}
