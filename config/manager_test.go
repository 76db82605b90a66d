package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// sampleConfig is a dispatcher-shaped configuration used across the tests.
type sampleConfig struct {
	Name          string `mapstructure:"name"`
	Addr          string `mapstructure:"addr"`
	RecvRateLimit int    `mapstructure:"recvRateLimit"`
}

func (c *sampleConfig) GetName() string {
	return c.Name
}

func (c *sampleConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if c.RecvRateLimit <= 0 {
		return fmt.Errorf("recvRateLimit must be positive")
	}
	return nil
}

// recordingListener counts change notifications.
type recordingListener struct {
	mu             sync.Mutex
	changeCount    int32
	lastConfig     Config
	lastOldConfig  Config
	lastConfigName string
}

func (l *recordingListener) OnConfigChanged(configName string, newConfig, oldConfig Config) error {
	atomic.AddInt32(&l.changeCount, 1)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastConfig = newConfig
	l.lastOldConfig = oldConfig
	l.lastConfigName = configName
	return nil
}

func writeYAML(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

// TestNewConfigManager tests creating configuration manager
func TestNewConfigManager(t *testing.T) {
	cm := NewConfigManager()
	if cm == nil {
		t.Fatal("NewConfigManager() returned nil")
	}
}

// TestLoadConfig tests loading configuration
func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	writeYAML(t, filepath.Join(tmpDir, "dispatcher.yaml"), `
name: "dispatcher"
addr: "127.0.0.1:7777"
recvRateLimit: 1000
`)

	cm := NewConfigManager()
	cm.SetBasePath(tmpDir)
	defer cm.Close()

	cfg := &sampleConfig{}
	if err := cm.LoadConfig("dispatcher", cfg); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "dispatcher" {
		t.Errorf("Expected name 'dispatcher', got '%s'", cfg.Name)
	}
	if cfg.RecvRateLimit != 1000 {
		t.Errorf("Expected recvRateLimit 1000, got %d", cfg.RecvRateLimit)
	}

	got, err := cm.GetConfig("dispatcher")
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if got.(*sampleConfig) != cfg {
		t.Error("GetConfig returned a different instance")
	}
}

// TestGetConfigNotFound tests retrieving non-existent configuration
func TestGetConfigNotFound(t *testing.T) {
	cm := NewConfigManager()

	if _, err := cm.GetConfig("nonexistent"); err == nil {
		t.Error("Expected error for nonexistent config, got nil")
	}
}

// TestLoadConfigMissingFile tests that a missing file surfaces as an error
func TestLoadConfigMissingFile(t *testing.T) {
	cm := NewConfigManager()
	cm.SetBasePath(t.TempDir())

	if err := cm.LoadConfig("absent", &sampleConfig{}); err == nil {
		t.Error("Expected error for missing config file, got nil")
	}
}

// TestConfigValidate tests that Config.Validate rejects bad files
func TestConfigValidate(t *testing.T) {
	tmpDir := t.TempDir()
	writeYAML(t, filepath.Join(tmpDir, "invalid.yaml"), `
name: ""
recvRateLimit: -1
`)

	cm := NewConfigManager()
	cm.SetBasePath(tmpDir)

	if err := cm.LoadConfig("invalid", &sampleConfig{}); err == nil {
		t.Error("Expected validation error, got nil")
	}
}

// TestRegisterValidator tests custom validators run after Validate
func TestRegisterValidator(t *testing.T) {
	tmpDir := t.TempDir()
	writeYAML(t, filepath.Join(tmpDir, "limited.yaml"), `
name: "limited"
recvRateLimit: 5000
`)

	cm := NewConfigManager()
	cm.SetBasePath(tmpDir)
	cm.RegisterValidator("limited", func(c Config) error {
		if c.(*sampleConfig).RecvRateLimit > 1000 {
			return fmt.Errorf("recvRateLimit too high")
		}
		return nil
	})

	if err := cm.LoadConfig("limited", &sampleConfig{}); err == nil {
		t.Error("Expected custom validator error, got nil")
	}
}

// TestConfigChangeListener tests configuration change notification mechanism
func TestConfigChangeListener(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "hook.yaml")
	writeYAML(t, configFile, `
name: "hook"
recvRateLimit: 100
`)

	cm := NewConfigManager()
	cm.SetBasePath(tmpDir)
	defer cm.Close()

	listener := &recordingListener{}
	cm.AddChangeListener(listener)

	var hookCalls int32
	cm.RegisterHook("hook", func(oldVal, newVal Config) error {
		atomic.AddInt32(&hookCalls, 1)
		return nil
	})

	if err := cm.LoadConfig("hook", &sampleConfig{}); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	writeYAML(t, configFile, `
name: "hook"
recvRateLimit: 200
`)

	deadline := time.Now().Add(3 * time.Second)
	for atomic.LoadInt32(&listener.changeCount) == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	if atomic.LoadInt32(&listener.changeCount) == 0 {
		t.Fatal("listener was not notified")
	}
	if atomic.LoadInt32(&hookCalls) == 0 {
		t.Error("hook was not called")
	}

	listener.mu.Lock()
	defer listener.mu.Unlock()
	if listener.lastConfigName != "hook" {
		t.Errorf("Expected lastConfigName 'hook', got '%s'", listener.lastConfigName)
	}
	if listener.lastConfig.(*sampleConfig).RecvRateLimit != 200 {
		t.Errorf("Expected reloaded recvRateLimit 200, got %d", listener.lastConfig.(*sampleConfig).RecvRateLimit)
	}
	if listener.lastOldConfig.(*sampleConfig).RecvRateLimit != 100 {
		t.Errorf("Expected old recvRateLimit 100, got %d", listener.lastOldConfig.(*sampleConfig).RecvRateLimit)
	}
}

// TestRemoveChangeListener tests that removed listeners are not notified
func TestRemoveChangeListener(t *testing.T) {
	cm := NewConfigManager()
	listener := &recordingListener{}

	cm.AddChangeListener(listener)
	cm.NotifyConfigChanged("x", &sampleConfig{}, nil)
	cm.RemoveChangeListener(listener)
	cm.NotifyConfigChanged("x", &sampleConfig{}, nil)

	if got := atomic.LoadInt32(&listener.changeCount); got != 1 {
		t.Errorf("Expected 1 notification, got %d", got)
	}
}

// TestEnvironmentConfig tests environment-specific configuration
func TestEnvironmentConfig(t *testing.T) {
	tmpDir := t.TempDir()
	envDir := filepath.Join(tmpDir, "production")
	if err := os.MkdirAll(envDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeYAML(t, filepath.Join(envDir, "env.yaml"), `
name: "production"
recvRateLimit: 10000
`)

	cm := NewConfigManager()
	cm.SetBasePath(tmpDir)
	cm.SetEnvironment("production")
	defer cm.Close()

	cfg := &sampleConfig{}
	if err := cm.LoadConfig("env", cfg); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.RecvRateLimit != 10000 {
		t.Errorf("Expected recvRateLimit 10000, got %d", cfg.RecvRateLimit)
	}
}

// TestConcurrentLoadConfig tests concurrent configuration loading
func TestConcurrentLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	writeYAML(t, filepath.Join(tmpDir, "concurrent.yaml"), `
name: "concurrent"
recvRateLimit: 10
`)

	cm := NewConfigManager()
	cm.SetBasePath(tmpDir)
	defer cm.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if err := cm.LoadConfig("concurrent", &sampleConfig{}); err != nil {
				errs <- fmt.Errorf("goroutine %d: %v", id, err)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
