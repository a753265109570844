package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junbin-yang/go-fsmkit/pkg/logger"
	"github.com/junbin-yang/go-fsmkit/pkg/statemachine"
)

func doorFSM(t *testing.T) *statemachine.FSM {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "door.yml"))
	require.NoError(t, err)
	def, err := statemachine.ParseConfig(data)
	require.NoError(t, err)
	fsm, err := statemachine.NewFSM(def, statemachine.WithLogger(logger.NewNop()))
	require.NoError(t, err)
	return fsm
}

func runScript(t *testing.T, fsm *statemachine.FSM, script ...string) []string {
	t.Helper()
	var out bytes.Buffer
	sh := &shell{fsm: fsm, out: &out}
	require.NoError(t, sh.run(strings.NewReader(strings.Join(script, "\n"))))
	return strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
}

func TestShell_Transitions(t *testing.T) {
	lines := runScript(t, doorFSM(t),
		"state",
		"fire open",
		"fire lock",
		"go locked",
		"go attic",
		"can unlock",
	)
	assert.Equal(t, []string{
		"closed",
		"opened",
		`error: no transition: state "opened" has no transition on "lock"`,
		"locked",
		`error: unknown state: "attic"`,
		"true",
	}, lines)
}

func TestShell_History(t *testing.T) {
	lines := runScript(t, doorFSM(t),
		"undo",
		"fire lock",
		"fire unlock",
		"undo",
		"history",
		"redo",
		"redo",
		"reset",
		"undo",
		"clear",
		"undo",
		"quit",
		"state",
	)
	assert.Equal(t, []string{
		"nothing to undo",
		"locked",
		"closed",
		"locked",
		"  0 closed",
		"> 1 locked",
		"  2 closed",
		"closed",
		"nothing to redo",
		"closed",
		"locked",
		"history cleared",
		"nothing to undo",
	}, lines)
}

func TestShell_States(t *testing.T) {
	lines := runScript(t, doorFSM(t), "states", "states close")
	assert.Equal(t, []string{"closed", "opened", "locked", "opened"}, lines)
}

func TestShell_BadInput(t *testing.T) {
	lines := runScript(t, doorFSM(t), "", "dance", "fire", "go a b")
	assert.Equal(t, []string{
		`error: unknown command "dance" (try 'help')`,
		"error: fire takes exactly one argument",
		"error: go takes exactly one argument",
	}, lines)
}

func TestReplay(t *testing.T) {
	fsm := doorFSM(t)
	require.NoError(t, replay(fsm, []string{"lock", "unlock", "open"}))
	assert.Equal(t, statemachine.State("opened"), fsm.Current())

	err := replay(fsm, []string{"close", "close"})
	require.ErrorIs(t, err, statemachine.ErrNoTransition)
	assert.Contains(t, err.Error(), "event #2")
	assert.Equal(t, statemachine.State("closed"), fsm.Current())
}
