package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func Test_LOG(t *testing.T) {
	defer func() { _ = Sync() }()
	Info("Info msg")
	Warn("Warn msg")
	Error("Error msg")
	Debug("Debug msg", Int("age", 3))
}

// CustomLogger 自定义日志实现示例
type CustomLogger struct{ infos int }

func (c *CustomLogger) Debug(msg string, fields ...Field)      {}
func (c *CustomLogger) Info(msg string, fields ...Field)       { c.infos++ }
func (c *CustomLogger) Warn(msg string, fields ...Field)       {}
func (c *CustomLogger) Error(msg string, fields ...Field)      {}
func (c *CustomLogger) Panic(msg string, fields ...Field)      {}
func (c *CustomLogger) Fatal(msg string, fields ...Field)      {}
func (c *CustomLogger) Debugf(format string, v ...interface{}) {}
func (c *CustomLogger) Infof(format string, v ...interface{})  { c.infos++ }
func (c *CustomLogger) Warnf(format string, v ...interface{})  {}
func (c *CustomLogger) Errorf(format string, v ...interface{}) {}
func (c *CustomLogger) Panicf(format string, v ...interface{}) {}
func (c *CustomLogger) Fatalf(format string, v ...interface{}) {}
func (c *CustomLogger) SetLevel(level Level)                   {}
func (c *CustomLogger) Sync() error                            { return nil }

func Test_CustomLogger(t *testing.T) {
	prev := Default()
	defer ReplaceDefault(prev)

	custom := &CustomLogger{}
	ReplaceDefault(custom)

	Info("test custom logger")
	Infof("test %s", "custom logger")
	Debugf("test %s", "custom logger")

	if custom.infos != 2 {
		t.Errorf("自定义日志调用次数错误: got %d, want 2", custom.infos)
	}
}

func Test_LevelMapping(t *testing.T) {
	if toZapLevel(DebugLevel) != -1 {
		t.Errorf("DebugLevel mapping failed: got %d, want -1", toZapLevel(DebugLevel))
	}
	if toZapLevel(InfoLevel) != 0 {
		t.Errorf("InfoLevel mapping failed: got %d, want 0", toZapLevel(InfoLevel))
	}
	if toZapLevel(WarnLevel) != 1 {
		t.Errorf("WarnLevel mapping failed: got %d, want 1", toZapLevel(WarnLevel))
	}
	if toZapLevel(ErrorLevel) != 2 {
		t.Errorf("ErrorLevel mapping failed: got %d, want 2", toZapLevel(ErrorLevel))
	}
	if toZapLevel(PanicLevel) != 4 {
		t.Errorf("PanicLevel mapping failed: got %d, want 4 (skip DPanic=3)", toZapLevel(PanicLevel))
	}
	if toZapLevel(FatalLevel) != 5 {
		t.Errorf("FatalLevel mapping failed: got %d, want 5", toZapLevel(FatalLevel))
	}
}

func Test_ParseLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{" error ", ErrorLevel, false},
		{"verbose", InfoLevel, true},
	}
	for _, c := range cases {
		got, err := ParseLevel(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", c.in, err, c.wantErr)
		}
		if got != c.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func Test_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel)

	l.Debug("hidden")
	l.SetLevel(DebugLevel)
	l.Debug("shown", String("state", "idle"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Info 级别不应输出 Debug 日志: %s", out)
	}
	if !strings.Contains(out, "[DEBUG]") || !strings.Contains(out, "shown") || !strings.Contains(out, "idle") {
		t.Errorf("调整级别后应输出 Debug 日志: %s", out)
	}
}

func Test_RotateBySize(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "size.log")
	l := New(NewRotateBySize(&RotateConfig{Filename: filename, MaxSize: 1}), InfoLevel)
	l.Info("rotate by size", Duration("latency", time.Millisecond))
	_ = l.Sync()

	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("读取日志文件失败: %v", err)
	}
	if !strings.Contains(string(data), "rotate by size") {
		t.Errorf("日志文件内容错误: %s", data)
	}
}

func Test_RotateByTime(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "time.log")
	l := New(NewRotateByTime(&RotateConfig{Filename: filename, RotationTime: time.Hour, MaxAge: 1}), InfoLevel)
	l.Info("rotate by time")

	matches, err := filepath.Glob(filename + ".*")
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	if len(matches) == 0 {
		t.Error("按时间轮转应生成带时间后缀的日志文件")
	}
}
