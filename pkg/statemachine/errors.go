package statemachine

import "errors"

var (
	// ErrConfig 状态机定义缺失或不合法
	ErrConfig = errors.New("invalid config")

	// ErrMalformedState 状态缺少转换表
	ErrMalformedState = errors.New("state has no transition table")

	// ErrUnknownState 目标状态不存在
	ErrUnknownState = errors.New("unknown state")

	// ErrNoTransition 当前状态没有该事件的转换
	ErrNoTransition = errors.New("no transition")

	// ErrMachineNotFound 注册表中不存在该状态机
	ErrMachineNotFound = errors.New("machine not found")
)
