package statemachine

import "sort"

// State 表示状态机中的状态
type State string

// Event 表示触发状态转换的事件
type Event string

// Transitions 单个状态的转换表：事件 -> 目标状态
type Transitions map[Event]State

// StateConfig 外部提供的状态定义
type StateConfig struct {
	Transitions Transitions `yaml:"transitions" json:"transitions"`
}

// Config 状态机定义
//
// Go 的 map 没有插入顺序，Order 记录状态的声明顺序（States("") 按此顺序返回）。
// Order 为空时按名称排序；非空时必须恰好列出 States 中的每个状态。
// 调用方持有 Config，状态机构造后不会修改它。
type Config struct {
	Initial State
	States  map[State]*StateConfig
	Order   []State
}

// NewConfig 创建空的状态机定义
func NewConfig(initial State) *Config {
	return &Config{
		Initial: initial,
		States:  make(map[State]*StateConfig),
	}
}

// Add 按声明顺序添加状态，transitions 为 nil 时使用空转换表
func (c *Config) Add(name State, transitions Transitions) *Config {
	if c.States == nil {
		c.States = make(map[State]*StateConfig)
	}
	if transitions == nil {
		transitions = Transitions{}
	}
	if _, exists := c.States[name]; !exists {
		c.Order = append(c.Order, name)
	}
	c.States[name] = &StateConfig{Transitions: transitions}
	return c
}

// order 返回状态的声明顺序
func (c *Config) order() []State {
	if len(c.Order) > 0 {
		return append([]State(nil), c.Order...)
	}
	return sortedStates(c.States)
}

func sortedStates(states map[State]*StateConfig) []State {
	names := make([]State, 0, len(states))
	for name := range states {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// definition 状态机内部持有的状态定义，携带自身名称
type definition struct {
	name        State
	transitions Transitions
}

// StateMachine 定义状态机的核心接口
type StateMachine interface {
	// Current 返回当前状态
	Current() State

	// Trigger 触发事件以转换状态
	Trigger(event Event) error

	// Can 检查是否可以从当前状态触发事件
	Can(event Event) bool

	// Reset 重置状态机到初始状态
	Reset()
}
