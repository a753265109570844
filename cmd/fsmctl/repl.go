package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/junbin-yang/go-fsmkit/pkg/statemachine"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Drive the machine interactively (default command)",
	Args:  cobra.NoArgs,
	RunE:  runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runREPL(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	sh := &shell{fsm: a.fsm, out: cmd.OutOrStdout(), prompt: "> "}
	return sh.run(cmd.InOrStdin())
}

const replHelp = `commands:
  state             print the active state
  states [event]    list states (only those handling event, if given)
  go <state>        change to a state directly
  fire <event>      trigger an event
  can <event>       report whether event can be triggered
  reset             return to the initial state (history is kept)
  undo | redo       walk the history
  clear             clear the history
  history           print the history, '>' marks the cursor
  help              show this help
  quit              leave`

// shell 按行解释命令并作用于状态机
type shell struct {
	fsm    *statemachine.FSM
	out    io.Writer
	prompt string
}

func (s *shell) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, s.prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if s.exec(scanner.Text()) {
			return nil
		}
	}
}

// exec 执行一行命令，返回 true 表示退出
func (s *shell) exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(s.out, replHelp)
	case "state":
		fmt.Fprintln(s.out, s.fsm.Current())
	case "states":
		var event statemachine.Event
		if len(args) > 0 {
			event = statemachine.Event(args[0])
		}
		for _, name := range s.fsm.States(event) {
			fmt.Fprintln(s.out, name)
		}
	case "go":
		if s.needArg(cmd, args) {
			s.report(s.fsm.ChangeState(statemachine.State(args[0])))
		}
	case "fire":
		if s.needArg(cmd, args) {
			s.report(s.fsm.Trigger(statemachine.Event(args[0])))
		}
	case "can":
		if s.needArg(cmd, args) {
			fmt.Fprintln(s.out, s.fsm.Can(statemachine.Event(args[0])))
		}
	case "reset":
		s.fsm.Reset()
		fmt.Fprintln(s.out, s.fsm.Current())
	case "undo":
		s.step(s.fsm.Undo(), "nothing to undo")
	case "redo":
		s.step(s.fsm.Redo(), "nothing to redo")
	case "clear":
		s.fsm.ClearHistory()
		fmt.Fprintln(s.out, "history cleared")
	case "history":
		s.printHistory()
	default:
		fmt.Fprintf(s.out, "error: unknown command %q (try 'help')\n", cmd)
	}
	return false
}

func (s *shell) needArg(cmd string, args []string) bool {
	if len(args) != 1 {
		fmt.Fprintf(s.out, "error: %s takes exactly one argument\n", cmd)
		return false
	}
	return true
}

func (s *shell) report(err error) {
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, s.fsm.Current())
}

func (s *shell) step(ok bool, msg string) {
	if !ok {
		fmt.Fprintln(s.out, msg)
		return
	}
	fmt.Fprintln(s.out, s.fsm.Current())
}

func (s *shell) printHistory() {
	cursor := s.fsm.Cursor()
	for i, name := range s.fsm.History() {
		mark := " "
		if i == cursor {
			mark = ">"
		}
		fmt.Fprintf(s.out, "%s %d %s\n", mark, i, name)
	}
}
