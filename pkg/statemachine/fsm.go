package statemachine

import (
	"fmt"

	"github.com/junbin-yang/go-fsmkit/pkg/logger"
)

// FSM 有限状态机实现，支持撤销/重做
//
// FSM 不是并发安全的，多个 goroutine 共享时请通过 Concurrent 访问。
type FSM struct {
	initial State
	states  map[State]*definition
	order   []State
	current State
	history history
	log     logger.Interface
}

// NewFSM 根据定义创建有限状态机
//
// 构造时只检查结构：每个状态都必须有转换表（可以为空）。
// 初始状态与转换目标是否存在，在执行转换时才会检查。
func NewFSM(cfg *Config, opts ...Option) (*FSM, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrConfig)
	}

	order := cfg.order()
	if len(order) != len(cfg.States) {
		return nil, fmt.Errorf("%w: order lists %d states, have %d", ErrConfig, len(order), len(cfg.States))
	}

	states := make(map[State]*definition, len(cfg.States))
	for _, name := range order {
		sc, ok := cfg.States[name]
		if !ok {
			return nil, fmt.Errorf("%w: order references undefined state %q", ErrConfig, name)
		}
		if _, dup := states[name]; dup {
			return nil, fmt.Errorf("%w: state %q listed twice in order", ErrConfig, name)
		}
		if sc == nil || sc.Transitions == nil {
			return nil, fmt.Errorf("%w: %w: %q", ErrConfig, ErrMalformedState, name)
		}
		table := make(Transitions, len(sc.Transitions))
		for event, target := range sc.Transitions {
			table[event] = target
		}
		states[name] = &definition{name: name, transitions: table}
	}

	f := &FSM{
		initial: cfg.Initial,
		states:  states,
		order:   order,
		current: cfg.Initial,
		log:     logger.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Current 返回当前状态
func (f *FSM) Current() State {
	return f.current
}

// Initial 返回初始状态
func (f *FSM) Initial() State {
	return f.initial
}

// States 返回在 event 上定义了转换的状态，按声明顺序。
// event 为空时返回全部状态。目标为空串的转换视为未定义。
func (f *FSM) States(event Event) []State {
	if event == "" {
		return append([]State(nil), f.order...)
	}
	states := make([]State, 0)
	for _, name := range f.order {
		if f.states[name].transitions[event] != "" {
			states = append(states, name)
		}
	}
	return states
}

// Transitions 返回某个状态转换表的副本
func (f *FSM) Transitions(state State) (Transitions, bool) {
	def, ok := f.states[state]
	if !ok {
		return nil, false
	}
	out := make(Transitions, len(def.transitions))
	for event, target := range def.transitions {
		out[event] = target
	}
	return out, true
}

// Can 检查当前状态是否能响应事件
func (f *FSM) Can(event Event) bool {
	target, ok := f.resolve(event)
	if !ok {
		return false
	}
	_, known := f.states[target]
	return known
}

// ChangeState 直接切换到目标状态并记录历史
func (f *FSM) ChangeState(target State) error {
	if _, ok := f.states[target]; !ok {
		f.log.Warn("change state rejected",
			logger.String("state", string(f.current)),
			logger.String("target", string(target)))
		return fmt.Errorf("%w: %q", ErrUnknownState, target)
	}

	from := f.current
	f.current = target
	f.history.commit(target)

	f.log.Debug("state changed",
		logger.String("from", string(from)),
		logger.String("to", string(target)),
		logger.Int("cursor", f.history.cursor))
	return nil
}

// Trigger 按当前状态的转换表处理事件
func (f *FSM) Trigger(event Event) error {
	target, ok := f.resolve(event)
	if !ok {
		f.log.Warn("trigger rejected",
			logger.String("state", string(f.current)),
			logger.String("event", string(event)))
		return fmt.Errorf("%w: state %q has no transition on %q", ErrNoTransition, f.current, event)
	}
	return f.ChangeState(target)
}

func (f *FSM) resolve(event Event) (State, bool) {
	def, ok := f.states[f.current]
	if !ok {
		return "", false
	}
	target := def.transitions[event]
	return target, target != ""
}

// Reset 回到初始状态。历史与游标保持不变，之后的 Undo/Redo 仍按原历史导航。
func (f *FSM) Reset() {
	f.current = f.initial
	f.log.Debug("state reset", logger.String("state", string(f.initial)))
}

// Undo 回退到上一个状态，没有可撤销的记录时返回 false
func (f *FSM) Undo() bool {
	state, ok := f.history.undo(f.initial)
	if !ok {
		return false
	}
	f.current = state
	f.log.Debug("undo", logger.String("state", string(state)), logger.Int("cursor", f.history.cursor))
	return true
}

// Redo 前进到下一个状态，没有可重做的记录时返回 false
func (f *FSM) Redo() bool {
	state, ok := f.history.redo(f.initial)
	if !ok {
		return false
	}
	f.current = state
	f.log.Debug("redo", logger.String("state", string(state)), logger.Int("cursor", f.history.cursor))
	return true
}

// CanUndo 是否存在可撤销的记录
func (f *FSM) CanUndo() bool {
	return f.history.canUndo()
}

// CanRedo 是否存在可重做的记录
func (f *FSM) CanRedo() bool {
	return f.history.canRedo()
}

// ClearHistory 清空历史记录，当前状态不变
func (f *FSM) ClearHistory() {
	f.history.clear()
	f.log.Debug("history cleared", logger.String("state", string(f.current)))
}

// History 返回历史快照。发生过转换后，第 0 项总是初始状态。
func (f *FSM) History() []State {
	return f.history.states(f.initial)
}

// Cursor 返回历史游标位置
func (f *FSM) Cursor() int {
	return f.history.cursor
}
