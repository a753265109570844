package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fsmctl",
	Short: "Drive a finite state machine with undo/redo",
	Long: `fsmctl loads a state machine definition (YAML or JSON) and lets you
trigger events, jump between states and walk the transition history.`,
	SilenceUsage: true,
	RunE:         runREPL,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "settings file (default: search ./config/fsmctl, <exec dir>/config/fsmctl, /etc/fsmctl/fsmctl)")
	rootCmd.PersistentFlags().String("machine", "", "state machine definition file, overrides settings")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error), overrides settings")
}
