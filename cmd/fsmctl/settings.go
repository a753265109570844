package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/junbin-yang/go-fsmkit/pkg/config"
	"github.com/junbin-yang/go-fsmkit/pkg/logger"
)

const appName = "fsmctl"

// Settings fsmctl 配置
type Settings struct {
	Machine string      `yaml:"machine" json:"machine" ini:"machine" env:"FSMCTL_MACHINE"`
	Log     LogSettings `yaml:"log" json:"log" ini:"log"`
	Watch   bool        `yaml:"watch" json:"watch" ini:"watch" env:"FSMCTL_WATCH"`
}

// LogSettings 日志配置
type LogSettings struct {
	Level   string `yaml:"level" json:"level" ini:"level" env:"FSMCTL_LOG_LEVEL"`
	File    string `yaml:"file" json:"file" ini:"file" env:"FSMCTL_LOG_FILE"`
	Rotate  string `yaml:"rotate" json:"rotate" ini:"rotate"` // size | time
	MaxSize int    `yaml:"max_size" json:"max_size" ini:"max_size"`
	MaxAge  int    `yaml:"max_age" json:"max_age" ini:"max_age"`
}

// loadSettings 加载配置文件。path 为空且默认路径下没有配置文件时只应用环境变量，manager 为 nil。
func loadSettings(path string, log logger.Interface) (*Settings, *config.ConfigManager, error) {
	cm := config.NewConfigManager(&Settings{},
		config.WithAppName(appName),
		// 不直接查找 {{.ExecDir}}/fsmctl，那是可执行文件本身
		config.WithDefaultPaths(
			"./config/{{.AppName}}",
			"{{.ExecDir}}/config/{{.AppName}}",
			"/etc/{{.AppName}}/{{.AppName}}",
		),
		config.WithLogger(log),
	)
	if err := cm.LoadConfig(path); err != nil {
		if path == "" && cm.Path() == "" {
			s := &Settings{}
			if err := config.ApplyEnv(s); err != nil {
				return nil, nil, err
			}
			return s, nil, nil
		}
		return nil, nil, err
	}

	data, err := cm.GetConfig()
	if err != nil {
		return nil, nil, err
	}
	s := data.(*Settings)

	// 相对路径以配置文件所在目录为基准
	if s.Machine != "" && !filepath.IsAbs(s.Machine) {
		s.Machine = filepath.Join(filepath.Dir(cm.Path()), s.Machine)
	}
	return s, cm, nil
}

// logOutput 根据配置选择日志输出
func (l LogSettings) logOutput() (io.Writer, error) {
	if l.File == "" {
		return os.Stderr, nil
	}

	cfg := &logger.RotateConfig{
		Filename:  l.File,
		MaxSize:   l.MaxSize,
		MaxAge:    l.MaxAge,
		LocalTime: true,
	}
	switch l.Rotate {
	case "", "size":
		return logger.NewRotateBySize(cfg), nil
	case "time":
		cfg.RotationTime = 24 * time.Hour
		return logger.NewRotateByTime(cfg), nil
	}
	return nil, fmt.Errorf("unknown log rotate mode %q", l.Rotate)
}

// newLogger 根据配置创建日志
func newLogger(l LogSettings) (*logger.Logger, error) {
	level, err := logger.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	out, err := l.logOutput()
	if err != nil {
		return nil, err
	}
	return logger.New(out, level, logger.AddCaller()), nil
}
