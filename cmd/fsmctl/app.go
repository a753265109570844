package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/junbin-yang/go-fsmkit/pkg/config"
	"github.com/junbin-yang/go-fsmkit/pkg/logger"
	"github.com/junbin-yang/go-fsmkit/pkg/statemachine"
)

// app 一次命令执行所需的全部组件
type app struct {
	settings   *Settings
	settingsCM *config.ConfigManager
	log        *logger.Logger
	fsm        *statemachine.FSM
}

// newApp 按 命令行参数 > 环境变量 > 配置文件 的优先级组装状态机
func newApp(cmd *cobra.Command) (*app, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	machinePath, _ := flags.GetString("machine")
	logLevel, _ := flags.GetString("log-level")

	settings, cm, err := loadSettings(configPath, logger.Default())
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if machinePath != "" {
		settings.Machine = machinePath
	}
	if logLevel != "" {
		settings.Log.Level = logLevel
	}
	if settings.Machine == "" {
		return nil, errors.New("no machine definition: use --machine or set 'machine' in settings")
	}

	log, err := newLogger(settings.Log)
	if err != nil {
		return nil, err
	}
	logger.ReplaceDefault(log)

	a := &app{settings: settings, settingsCM: cm, log: log}

	def, err := loadMachine(settings.Machine)
	if err != nil {
		a.close()
		return nil, err
	}
	a.fsm, err = statemachine.NewFSM(def, statemachine.WithLogger(log))
	if err != nil {
		a.close()
		return nil, fmt.Errorf("machine %s: %w", settings.Machine, err)
	}

	if settings.Watch && cm != nil {
		a.watchLogLevel(logLevel != "")
	}

	log.Info("machine loaded",
		logger.String("path", settings.Machine),
		logger.String("initial", string(a.fsm.Initial())),
		logger.Int("states", len(a.fsm.States(""))))
	return a, nil
}

// loadMachine 读取状态机定义，格式按文件后缀识别
func loadMachine(path string) (*statemachine.Config, error) {
	cm := config.NewConfigManager(&statemachine.Config{}, config.WithLogger(logger.Default()))
	if err := cm.LoadConfig(path); err != nil {
		return nil, fmt.Errorf("load machine: %w", err)
	}
	data, err := cm.GetConfig()
	if err != nil {
		return nil, err
	}
	return data.(*statemachine.Config), nil
}

// watchLogLevel 配置文件变化时热更新日志级别；命令行指定了级别时不覆盖
func (a *app) watchLogLevel(pinned bool) {
	a.settingsCM.OnChange(func(_, new interface{}) {
		if pinned {
			return
		}
		s := new.(*Settings)
		level, err := logger.ParseLevel(s.Log.Level)
		if err != nil {
			a.log.Warn("ignore log level change", logger.Err(err))
			return
		}
		a.log.SetLevel(level)
		a.log.Info("log level changed", logger.String("level", level.String()))
	})
	if err := a.settingsCM.EnableWatch(true); err != nil {
		a.log.Warn("settings watch disabled", logger.Err(err))
	}
}

func (a *app) close() {
	if a.settingsCM != nil {
		a.settingsCM.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}
