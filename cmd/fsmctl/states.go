package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/junbin-yang/go-fsmkit/pkg/statemachine"
)

var statesCmd = &cobra.Command{
	Use:   "states [EVENT]",
	Short: "List states, or only the states that handle EVENT",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		var event statemachine.Event
		if len(args) == 1 {
			event = statemachine.Event(args[0])
		}
		for _, name := range a.fsm.States(event) {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statesCmd)
}
