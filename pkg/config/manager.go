package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/junbin-yang/go-fsmkit/pkg/logger"
)

// ConfigManager 通用配置管理器
type ConfigManager struct {
	instance         interface{}      // 配置实例
	configPath       string           // 配置文件路径
	appName          string           // 应用名称
	serializer       Serializer       // 当前使用的序列化器
	forceFormat      Serializer       // 强制指定的格式（优先级最高）
	supportedFormats []Serializer     // 支持的配置格式列表
	defaultPaths     []string         // 默认配置路径模板
	once             sync.Once        // 确保配置只加载一次
	mu               sync.RWMutex     // 读写锁
	loadErr          error            // 加载错误
	log              logger.Interface // 日志

	// 配置监听相关
	enableWatch           bool              // 是否启用配置监听
	watchDebounceInterval time.Duration     // 防抖间隔
	watcher               *fsnotify.Watcher // 文件监听器
	watchQuit             chan struct{}     // 监听退出信号
	closeOnce             sync.Once

	// 配置变更回调
	callbacks []func(old, new interface{})
}

// NewConfigManager 创建配置管理器实例
// cfg: 配置结构体指针（必须传入指针）
// options: 配置选项
func NewConfigManager(cfg interface{}, options ...Option) *ConfigManager {
	if cfg == nil {
		panic("config instance cannot be nil")
	}
	if reflect.ValueOf(cfg).Kind() != reflect.Ptr {
		panic("config instance must be a pointer")
	}

	// 默认配置
	cm := &ConfigManager{
		instance:         cfg,
		appName:          "app",
		serializer:       &YAMLSerializer{},
		supportedFormats: []Serializer{&YAMLSerializer{}, &JSONSerializer{}, &INISerializer{}},
		defaultPaths: []string{
			"./{{.AppName}}",
			"{{.ExecDir}}/{{.AppName}}",
			"/etc/{{.AppName}}",
		},
		log:                   logger.Default(),
		watchDebounceInterval: 500 * time.Millisecond,
		watchQuit:             make(chan struct{}),
	}

	// 应用自定义选项
	for _, opt := range options {
		opt(cm)
	}

	return cm
}

// LoadConfig 加载配置文件
// customPath: 自定义配置路径，空字符串使用默认路径
func (cm *ConfigManager) LoadConfig(customPath string) error {
	cm.once.Do(func() {
		cm.mu.Lock()
		defer cm.mu.Unlock()

		var err error

		// 1. 处理自定义路径
		if customPath != "" {
			if err = validateConfigPath(customPath); err != nil {
				cm.loadErr = fmt.Errorf("invalid custom config path: %w", err)
				return
			}
			cm.configPath = customPath
			// 选择序列化器（强制格式 > 后缀识别 > 默认）
			cm.chooseSerializer(customPath)
		} else {
			// 2. 查找默认路径
			if cm.configPath, err = cm.findDefaultConfigPath(); err != nil {
				cm.loadErr = fmt.Errorf("default config not found: %w", err)
				return
			}
		}

		// 3. 解析配置文件
		if err = cm.parseConfigFile(cm.instance); err != nil {
			cm.loadErr = fmt.Errorf("parse config failed: %w", err)
			return
		}

		// 4. 应用环境变量覆盖
		if err = ApplyEnv(cm.instance); err != nil {
			cm.loadErr = fmt.Errorf("apply env overrides failed: %w", err)
			return
		}

		// 5. 启动配置监听（如果启用）
		if cm.enableWatch {
			if err = cm.startWatch(); err != nil {
				cm.log.Warn("config watch disabled", logger.String("path", cm.configPath), logger.Err(err))
			}
		}
	})

	return cm.loadErr
}

// GetConfig 获取配置实例
// 返回值: 配置实例, 错误
func (cm *ConfigManager) GetConfig() (interface{}, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.loadErr != nil {
		return nil, cm.loadErr
	}
	if cm.configPath == "" {
		return nil, errors.New("config not initialized, call LoadConfig first")
	}
	return cm.instance, nil
}

// Path 返回已加载的配置文件路径
func (cm *ConfigManager) Path() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.configPath
}

// SaveConfig 保存配置到文件
func (cm *ConfigManager) SaveConfig() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.instance == nil || cm.configPath == "" {
		return errors.New("config not initialized")
	}

	// 序列化配置
	data, err := cm.serializer.Marshal(cm.instance)
	if err != nil {
		return fmt.Errorf("marshal config failed: %w", err)
	}

	// 先写入临时文件（避免文件损坏）
	tmpPath := cm.configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp config failed: %w", err)
	}

	// 替换原文件
	if err := os.Rename(tmpPath, cm.configPath); err != nil {
		return fmt.Errorf("rename temp config failed: %w", err)
	}

	return nil
}

// ReloadConfig 手动重新加载配置
func (cm *ConfigManager) ReloadConfig() error {
	cm.mu.Lock()

	currentPath := cm.configPath
	if currentPath == "" {
		cm.mu.Unlock()
		return errors.New("config path not initialized")
	}
	if err := validateConfigPath(currentPath); err != nil {
		cm.mu.Unlock()
		return fmt.Errorf("invalid config path: %w", err)
	}

	// 创建新实例避免覆盖原数据
	newInstance := reflect.New(reflect.ValueOf(cm.instance).Elem().Type()).Interface()
	if err := cm.parseConfigFile(newInstance); err != nil {
		cm.mu.Unlock()
		return err
	}

	// 应用环境变量覆盖
	if err := ApplyEnv(newInstance); err != nil {
		cm.mu.Unlock()
		return fmt.Errorf("apply env overrides failed: %w", err)
	}

	oldInstance := cm.instance
	cm.instance = newInstance
	cm.loadErr = nil

	// 复制回调列表（避免死锁）
	callbacks := make([]func(old, new interface{}), len(cm.callbacks))
	copy(callbacks, cm.callbacks)
	cm.mu.Unlock()

	// 触发配置变更回调（在锁外执行）
	for _, callback := range callbacks {
		callback(oldInstance, newInstance)
	}

	return nil
}

// EnableWatch 动态启用/禁用配置监听
func (cm *ConfigManager) EnableWatch(enable bool) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.enableWatch = enable
	if enable && cm.configPath != "" {
		return cm.startWatch()
	}
	cm.stopWatch()
	return nil
}

// Close 关闭配置管理器（停止监听），可重复调用
func (cm *ConfigManager) Close() {
	cm.closeOnce.Do(func() {
		cm.mu.Lock()
		cm.stopWatch()
		cm.mu.Unlock()
		close(cm.watchQuit)
	})
}

// OnChange 注册配置变更回调
func (cm *ConfigManager) OnChange(callback func(old, new interface{})) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, callback)
}

/* ------------------------------ 内部方法 ------------------------------ */

// chooseSerializer 选择序列化器
func (cm *ConfigManager) chooseSerializer(path string) {
	// 强制格式优先级最高
	if cm.forceFormat != nil {
		cm.serializer = cm.forceFormat
		return
	}

	// 根据文件后缀选择，无匹配时保留默认序列化器
	ext := filepath.Ext(path)
	for _, format := range cm.supportedFormats {
		if matchesExt(format, ext) {
			cm.serializer = format
			return
		}
	}
}

// findDefaultConfigPath 查找默认配置路径
func (cm *ConfigManager) findDefaultConfigPath() (string, error) {
	execPath, _ := os.Executable()
	execDir := filepath.Dir(execPath)

	// 遍历默认路径模板
	for _, pathTpl := range cm.defaultPaths {
		// 替换路径变量
		basePath := replacePathVars(pathTpl, map[string]string{
			"AppName": cm.appName,
			"ExecDir": execDir,
		})

		// 先尝试无后缀文件
		if err := validateConfigPath(basePath); err == nil {
			cm.chooseSerializer(basePath)
			return basePath, nil
		}

		// 尝试带后缀的文件
		for _, format := range cm.supportedFormats {
			for _, ext := range fileExts(format) {
				fullPath := basePath + ext
				if err := validateConfigPath(fullPath); err == nil {
					cm.serializer = format
					if cm.forceFormat != nil {
						cm.serializer = cm.forceFormat
					}
					return fullPath, nil
				}
			}
		}
	}

	return "", errors.New("no valid config file found (tried default paths and formats)")
}

// startWatch 启动配置文件监听，调用方需持有 cm.mu。
// 监听所在目录而不是文件本身，编辑器以重命名方式保存时不会丢失监听。
func (cm *ConfigManager) startWatch() error {
	if cm.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher failed: %w", err)
	}
	if err := watcher.Add(filepath.Dir(cm.configPath)); err != nil {
		watcher.Close()
		return fmt.Errorf("add watch path failed: %w", err)
	}

	cm.watcher = watcher
	go cm.watchLoop(watcher, filepath.Clean(cm.configPath))
	return nil
}

// stopWatch 停止配置文件监听，调用方需持有 cm.mu
func (cm *ConfigManager) stopWatch() {
	if cm.watcher != nil {
		cm.watcher.Close()
		cm.watcher = nil
	}
}

// watchLoop 监听文件变化循环，watcher 关闭后退出
func (cm *ConfigManager) watchLoop(watcher *fsnotify.Watcher, target string) {
	debounceTimer := time.NewTimer(0)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	defer debounceTimer.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			// 处理文件修改/创建/重命名事件
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounceTimer.Reset(cm.watchDebounceInterval)
			}

		case <-debounceTimer.C:
			// 自动重载配置
			if err := cm.ReloadConfig(); err != nil {
				cm.log.Warn("config auto reload failed", logger.String("path", target), logger.Err(err))
			} else {
				cm.log.Info("config auto reloaded", logger.String("path", target))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			cm.log.Warn("config watch error", logger.Err(err))

		case <-cm.watchQuit:
			return
		}
	}
}

// parseConfigFile 解析配置文件到 target
func (cm *ConfigManager) parseConfigFile(target interface{}) error {
	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return fmt.Errorf("read file failed: %w", err)
	}

	if err := cm.serializer.Unmarshal(data, target); err != nil {
		return fmt.Errorf("unmarshal failed (%s): %w", cm.serializer.GetName(), err)
	}

	return nil
}
