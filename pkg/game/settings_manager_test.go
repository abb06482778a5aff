package game

import (
	"testing"

	"github.com/quasilyte/gdata/v2"
)

// openTestStorage 在临时 HOME 下打开 gdata 存储
func openTestStorage(t *testing.T, appName string) *gdata.Manager {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", "")

	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return manager
}

// TestDefaultSettings 测试 DefaultSettings() 返回正确的默认值
func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if settings.Count != 50 {
		t.Errorf("Count: got %v, want 50", settings.Count)
	}
	if settings.MaxGeneration != 1 {
		t.Errorf("MaxGeneration: got %v, want 1", settings.MaxGeneration)
	}
	if !settings.SoundEnabled {
		t.Error("SoundEnabled: got false, want true")
	}
	if settings.Fullscreen {
		t.Error("Fullscreen: got true, want false")
	}
}

// TestNewSettingsManagerNilGdata 测试 gdataManager 为 nil 时的降级场景
func TestNewSettingsManagerNilGdata(t *testing.T) {
	sm := NewSettingsManager(nil, nil, nil)

	if sm.Persistent() {
		t.Error("degraded manager should not be persistent")
	}
	if sm.GetSettings().Count != 50 {
		t.Errorf("Degraded mode Count: got %v, want 50", sm.GetSettings().Count)
	}

	// 降级模式下 Save() 不报错
	if err := sm.Save(); err != nil {
		t.Errorf("Save() in degraded mode should return nil, got: %v", err)
	}

	// 降级模式下 Load() 恢复默认值
	sm.SetCount(7)
	if err := sm.Load(); err != nil {
		t.Errorf("Load() in degraded mode should return nil, got: %v", err)
	}
	if sm.GetSettings().Count != 50 {
		t.Errorf("After Load() in degraded mode, Count: got %v, want 50", sm.GetSettings().Count)
	}
}

// TestNewSettingsManagerCustomDefaults 配置文件提供的默认值
func TestNewSettingsManagerCustomDefaults(t *testing.T) {
	manager := openTestStorage(t, "test_sparkle_defaults")

	defaults := DefaultSettings()
	defaults.Count = 12
	defaults.MaxGeneration = 2

	sm := NewSettingsManager(manager, defaults, nil)
	if !sm.Persistent() {
		t.Error("manager with storage should be persistent")
	}
	got := sm.GetSettings()
	if got.Count != 12 || got.MaxGeneration != 2 {
		t.Errorf("settings = %+v, want count 12 maxGeneration 2", got)
	}

	// 修改当前设置不影响保存的默认值
	sm.SetCount(99)
	if defaults.Count != 12 {
		t.Error("defaults were mutated")
	}
}

// TestSettingsLoadSave 测试 Load() 和 Save() 功能
func TestSettingsLoadSave(t *testing.T) {
	manager := openTestStorage(t, "test_sparkle_load_save")

	sm1 := NewSettingsManager(manager, nil, nil)
	sm1.SetCount(80)
	sm1.SetMaxGeneration(2)
	sm1.SetSoundEnabled(false)
	sm1.SetSoundVolume(0.25)
	sm1.SetFullscreen(true)

	if err := sm1.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	sm2 := NewSettingsManager(manager, nil, nil)
	settings := sm2.GetSettings()

	if settings.Count != 80 {
		t.Errorf("Loaded Count: got %v, want 80", settings.Count)
	}
	if settings.MaxGeneration != 2 {
		t.Errorf("Loaded MaxGeneration: got %v, want 2", settings.MaxGeneration)
	}
	if settings.SoundEnabled {
		t.Error("Loaded SoundEnabled: got true, want false")
	}
	if settings.SoundVolume != 0.25 {
		t.Errorf("Loaded SoundVolume: got %v, want 0.25", settings.SoundVolume)
	}
	if !settings.Fullscreen {
		t.Error("Loaded Fullscreen: got false, want true")
	}
}

// TestSettingsLoadClampsAndFillsDefaults 保存的数据缺字段或越界
func TestSettingsLoadClampsAndFillsDefaults(t *testing.T) {
	manager := openTestStorage(t, "test_sparkle_clamp")

	data := []byte("count: 100000\nmaxGeneration: -3\n")
	if err := manager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		t.Fatalf("SaveObjectProp() error: %v", err)
	}

	sm := NewSettingsManager(manager, nil, nil)
	settings := sm.GetSettings()
	if settings.Count != MaxCount {
		t.Errorf("Count: got %v, want %v", settings.Count, MaxCount)
	}
	if settings.MaxGeneration != MinMaxGeneration {
		t.Errorf("MaxGeneration: got %v, want %v", settings.MaxGeneration, MinMaxGeneration)
	}
	// 缺失字段保留默认值
	if !settings.SoundEnabled || settings.SoundVolume != 0.8 {
		t.Errorf("missing fields should keep defaults, got %+v", settings)
	}
}

// TestSettingsLoadCorrupt 损坏的数据回退到默认值
func TestSettingsLoadCorrupt(t *testing.T) {
	manager := openTestStorage(t, "test_sparkle_corrupt")

	if err := manager.SaveObjectProp(settingsObject, settingsProperty, []byte("count: [1, 2")); err != nil {
		t.Fatalf("SaveObjectProp() error: %v", err)
	}

	sm := NewSettingsManager(manager, nil, nil)
	if sm.GetSettings().Count != 50 {
		t.Errorf("Count: got %v, want default 50", sm.GetSettings().Count)
	}
	if err := sm.Load(); err == nil {
		t.Error("Load() should report corrupt data")
	}
}

// TestSetCountClamp 测试 SetCount 范围校验
func TestSetCountClamp(t *testing.T) {
	sm := NewSettingsManager(nil, nil, nil)

	tests := []struct {
		input    int
		expected int
	}{
		{50, 50},             // 正常值
		{MinCount, MinCount}, // 下限
		{MaxCount, MaxCount}, // 上限
		{0, MinCount},        // 低于下限
		{-10, MinCount},
		{MaxCount + 1, MaxCount}, // 高于上限
	}

	for _, tt := range tests {
		sm.SetCount(tt.input)
		if sm.GetSettings().Count != tt.expected {
			t.Errorf("SetCount(%v): got %v, want %v", tt.input, sm.GetSettings().Count, tt.expected)
		}
	}
}

// TestSetMaxGenerationClamp 测试 SetMaxGeneration 范围校验
func TestSetMaxGenerationClamp(t *testing.T) {
	sm := NewSettingsManager(nil, nil, nil)

	tests := []struct {
		input    int
		expected int
	}{
		{0, 0},
		{2, 2},
		{-1, MinMaxGeneration},
		{MaxMaxGeneration + 5, MaxMaxGeneration},
	}

	for _, tt := range tests {
		sm.SetMaxGeneration(tt.input)
		if sm.GetSettings().MaxGeneration != tt.expected {
			t.Errorf("SetMaxGeneration(%v): got %v, want %v",
				tt.input, sm.GetSettings().MaxGeneration, tt.expected)
		}
	}
}

// TestClampVolume 测试 clampVolume 辅助函数
func TestClampVolume(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0.5, 0.5},
		{0.0, 0.0},
		{1.0, 1.0},
		{-1.0, 0.0},
		{2.0, 1.0},
		{0.001, 0.001},
	}

	for _, tt := range tests {
		result := clampVolume(tt.input)
		if result != tt.expected {
			t.Errorf("clampVolume(%v): got %v, want %v", tt.input, result, tt.expected)
		}
	}
}

// TestOpenStorage 桌面端由 gdata 创建目录，存储可以正常读写
func TestOpenStorage(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", "")

	manager, err := OpenStorage("moneysparkle_test_open")
	if err != nil {
		t.Fatalf("OpenStorage() error: %v", err)
	}

	sm := NewSettingsManager(manager, nil, nil)
	if !sm.Persistent() {
		t.Fatal("settings should be persistent with an opened storage")
	}
	sm.SetCount(77)
	if err := sm.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	reloaded := NewSettingsManager(manager, nil, nil)
	if got := reloaded.GetSettings().Count; got != 77 {
		t.Errorf("reloaded count = %d, want 77", got)
	}
	if StoragePath() != "" {
		t.Errorf("StoragePath() = %q, want empty on desktop", StoragePath())
	}
}
