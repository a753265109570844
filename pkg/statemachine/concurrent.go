package statemachine

import (
	"fmt"
	"sync"
)

// guarded 带互斥锁的状态机
type guarded struct {
	mu  sync.Mutex
	fsm *FSM
}

// Concurrent 并发状态机管理器
//
// FSM 本身没有锁，Concurrent 为每个注册的状态机提供独立的互斥锁，
// 所有经由 Concurrent 的调用都在该锁内执行。
type Concurrent struct {
	mu       sync.RWMutex
	machines map[string]*guarded
}

// NewConcurrent 创建并发状态机管理器
func NewConcurrent() *Concurrent {
	return &Concurrent{
		machines: make(map[string]*guarded),
	}
}

// AddMachine 添加状态机，同名状态机会被替换
func (c *Concurrent) AddMachine(name string, machine *FSM) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.machines[name] = &guarded{fsm: machine}
}

// RemoveMachine 移除状态机
func (c *Concurrent) RemoveMachine(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.machines, name)
}

func (c *Concurrent) lookup(name string) (*guarded, error) {
	c.mu.RLock()
	g, exists := c.machines[name]
	c.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrMachineNotFound, name)
	}
	return g, nil
}

// Do 在状态机的锁内执行 fn
func (c *Concurrent) Do(name string, fn func(m *FSM) error) error {
	g, err := c.lookup(name)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.fsm)
}

// Trigger 触发指定状态机的事件
func (c *Concurrent) Trigger(name string, event Event) error {
	return c.Do(name, func(m *FSM) error {
		return m.Trigger(event)
	})
}

// ChangeState 直接切换指定状态机的状态
func (c *Concurrent) ChangeState(name string, target State) error {
	return c.Do(name, func(m *FSM) error {
		return m.ChangeState(target)
	})
}

// Undo 撤销指定状态机的上一次转换
func (c *Concurrent) Undo(name string) (bool, error) {
	var ok bool
	err := c.Do(name, func(m *FSM) error {
		ok = m.Undo()
		return nil
	})
	return ok, err
}

// Redo 重做指定状态机的下一次转换
func (c *Concurrent) Redo(name string) (bool, error) {
	var ok bool
	err := c.Do(name, func(m *FSM) error {
		ok = m.Redo()
		return nil
	})
	return ok, err
}

// Current 返回指定状态机的当前状态
func (c *Concurrent) Current(name string) (State, error) {
	var state State
	err := c.Do(name, func(m *FSM) error {
		state = m.Current()
		return nil
	})
	return state, err
}

func (c *Concurrent) snapshot() map[string]*guarded {
	c.mu.RLock()
	defer c.mu.RUnlock()
	machines := make(map[string]*guarded, len(c.machines))
	for name, g := range c.machines {
		machines[name] = g
	}
	return machines
}

// TriggerAll 触发所有状态机的相同事件
func (c *Concurrent) TriggerAll(event Event) map[string]error {
	machines := c.snapshot()

	results := make(map[string]error, len(machines))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, g := range machines {
		wg.Add(1)
		go func(n string, g *guarded) {
			defer wg.Done()
			g.mu.Lock()
			err := g.fsm.Trigger(event)
			g.mu.Unlock()

			mu.Lock()
			results[n] = err
			mu.Unlock()
		}(name, g)
	}

	wg.Wait()
	return results
}

// GetStates 获取所有状态机的当前状态
func (c *Concurrent) GetStates() map[string]State {
	machines := c.snapshot()

	states := make(map[string]State, len(machines))
	for name, g := range machines {
		g.mu.Lock()
		states[name] = g.fsm.Current()
		g.mu.Unlock()
	}
	return states
}

// ResetAll 重置所有状态机
func (c *Concurrent) ResetAll() {
	for _, g := range c.snapshot() {
		g.mu.Lock()
		g.fsm.Reset()
		g.mu.Unlock()
	}
}

// Count 返回状态机数量
func (c *Concurrent) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.machines)
}
