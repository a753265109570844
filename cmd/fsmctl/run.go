package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/junbin-yang/go-fsmkit/pkg/statemachine"
)

var runCmd = &cobra.Command{
	Use:   "run EVENT...",
	Short: "Trigger events in order and print the final state",
	Long:  `Triggers each event in order. Stops at the first event the machine cannot handle.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if err := replay(a.fsm, args); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.fsm.Current())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// replay 依次触发事件，遇到第一个失败即返回
func replay(fsm *statemachine.FSM, events []string) error {
	for i, event := range events {
		if err := fsm.Trigger(statemachine.Event(event)); err != nil {
			return fmt.Errorf("event #%d: %w", i+1, err)
		}
	}
	return nil
}
