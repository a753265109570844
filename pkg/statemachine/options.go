package statemachine

import "github.com/junbin-yang/go-fsmkit/pkg/logger"

// Option 状态机选项
type Option func(*FSM)

// WithLogger 设置日志实现，nil 时关闭日志
func WithLogger(l logger.Interface) Option {
	return func(f *FSM) {
		if l == nil {
			l = logger.NewNop()
		}
		f.log = l
	}
}
