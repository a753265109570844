package statemachine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestParseConfig_Files(t *testing.T) {
	for _, name := range []string{"turnstile.yml", "turnstile.json"} {
		t.Run(name, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join("testdata", name))
			require.NoError(t, err)

			cfg, err := ParseConfig(data)
			require.NoError(t, err)

			assert.Equal(t, State("locked"), cfg.Initial)
			assert.Equal(t, []State{"locked", "unlocked", "broken"}, cfg.Order)
			assert.Equal(t, State("unlocked"), cfg.States["locked"].Transitions["coin"])
			assert.NotNil(t, cfg.States["broken"].Transitions)

			fsm := newTestFSM(t, cfg)
			assert.Equal(t, []State{"locked", "unlocked", "broken"}, fsm.States(""))
			assert.Equal(t, []State{"locked", "unlocked"}, fsm.States("push"))
		})
	}
}

func TestParseConfig_MissingTransitions(t *testing.T) {
	cfg, err := ParseConfig([]byte("initial: a\nstates:\n  a:\n    transitions: {go: b}\n  b: {}\n"))
	require.NoError(t, err)

	_, err = NewFSM(cfg)
	require.ErrorIs(t, err, ErrMalformedState)
}

func TestParseConfig_Invalid(t *testing.T) {
	_, err := ParseConfig([]byte("initial: [unclosed"))
	require.ErrorIs(t, err, ErrConfig)
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	cfg := NewConfig("z").
		Add("z", Transitions{"next": "y"}).
		Add("y", Transitions{"next": "x"}).
		Add("x", nil)

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	back, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, cfg.Initial, back.Initial)
	assert.Equal(t, cfg.Order, back.Order)
	assert.Equal(t, cfg.States, back.States)
}

func TestConfig_JSONRoundTrip(t *testing.T) {
	cfg := NewConfig("z").
		Add("z", Transitions{"next": "y"}).
		Add("y", Transitions{"next": "x"}).
		Add("x", nil)

	data, err := json.MarshalIndent(cfg, "", "\t")
	require.NoError(t, err)

	var back Config
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, cfg.Initial, back.Initial)
	assert.Equal(t, cfg.Order, back.Order)
	assert.Equal(t, cfg.States, back.States)
}

func TestParseConfig_BoolLikeStateNames(t *testing.T) {
	data := "initial: off\n" +
		"states:\n" +
		"  off: {transitions: {toggle: on}}\n" +
		"  on: {transitions: {toggle: off}}\n" +
		"  1.0: {transitions: {}}\n" +
		"  yes: {transitions: {}}\n"
	cfg, err := ParseConfig([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, State("off"), cfg.Initial)
	assert.Equal(t, []State{"off", "on", "1.0", "yes"}, cfg.Order)

	fsm, err := NewFSM(cfg)
	require.NoError(t, err)
	require.NoError(t, fsm.Trigger("toggle"))
	assert.Equal(t, State("on"), fsm.Current())
	require.NoError(t, fsm.Trigger("toggle"))
	assert.Equal(t, State("off"), fsm.Current())

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	back, err := ParseConfig(out)
	require.NoError(t, err)
	assert.Equal(t, cfg.Order, back.Order)
	assert.Equal(t, cfg.States, back.States)
}

func TestParseConfig_JSONEscapes(t *testing.T) {
	data := `{"initial":"a\/b","states":{"a\/b":{"transitions":{"go":"é"}},"é":{"transitions":{}}}}`
	cfg, err := ParseConfig([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, State("a/b"), cfg.Initial)
	assert.Equal(t, []State{"a/b", "é"}, cfg.Order)

	fsm, err := NewFSM(cfg)
	require.NoError(t, err)
	require.NoError(t, fsm.Trigger("go"))
	assert.Equal(t, State("é"), fsm.Current())
}

func TestParseConfig_JSONOrderIgnoresOtherFields(t *testing.T) {
	data := `{"states":{"b":{"transitions":{"x":"a"}},"a":{"transitions":{"states":"b"}}},"initial":"b"}`
	cfg, err := ParseConfig([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, State("b"), cfg.Initial)
	assert.Equal(t, []State{"b", "a"}, cfg.Order)
}
