package logger

import "go.uber.org/zap"

type Option = zap.Option

func AddCaller() Option {
	return zap.AddCaller()
}

func AddCallerSkip(skip int) Option {
	return zap.AddCallerSkip(skip)
}

// AddStacktrace 在 level 及以上级别记录堆栈
func AddStacktrace(level Level) Option {
	return zap.AddStacktrace(toZapLevel(level))
}
