package am

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at a fresh temp dir so
// Load only sees files the test writes
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	chdir(t, dir)
	Reset()
	t.Cleanup(Reset)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, "crossview.db", cfg.Database.Path)
	require.NotNil(t, cfg.Server.Port)
	assert.Equal(t, DefaultServerPort, *cfg.Server.Port)
	assert.Equal(t, LinkModeDirectLinks, cfg.Links.DefaultMode)
	assert.Equal(t, 10.0, cfg.Links.EdgeMargin)
	assert.Equal(t, 0.15, cfg.Links.Jitter)
	assert.NoError(t, cfg.Validate())
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	tests := []struct {
		key      string
		expected interface{}
	}{
		{"database.path", "crossview.db"},
		{"database.timezone", "UTC"},
		{"server.port", DefaultServerPort},
		{"server.log_theme", "everforest"},
		{"server.max_messages_per_second", 60.0},
		{"links.default_mode", LinkModeDirectLinks},
		{"links.min_distance", 1.0},
		{"links.time_left_fraction", 0.10},
		{"links.time_top_fraction", 0.15},
		{"links.time_corner_fraction", 0.20},
		{"links.city_time_curve", 0.05},
		{"links.curve_factor", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, v.Get(tt.key))
		})
	}
}

func TestValidate(t *testing.T) {
	zero := 0
	negative := -5
	huge := 70000

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"empty config is valid", Config{}, false},
		{"zero port is invalid", Config{Server: ServerConfig{Port: &zero}}, true},
		{"negative port is invalid", Config{Server: ServerConfig{Port: &negative}}, true},
		{"port above range is invalid", Config{Server: ServerConfig{Port: &huge}}, true},
		{"zero message rate is valid (unlimited)", Config{Server: ServerConfig{MaxMessagesPerSecond: 0}}, false},
		{"negative message rate is invalid", Config{Server: ServerConfig{MaxMessagesPerSecond: -1}}, true},
		{"known timezone abbreviation", Config{Database: DatabaseConfig{Timezone: "cst"}}, false},
		{"unknown timezone", Config{Database: DatabaseConfig{Timezone: "Mars/Olympus"}}, true},
		{"loop mode", Config{Links: LinksConfig{DefaultMode: LinkModeLoopLinks}}, false},
		{"unknown mode", Config{Links: LinksConfig{DefaultMode: "sparkles"}}, true},
		{"negative margin", Config{Links: LinksConfig{EdgeMargin: -1}}, true},
		{"fraction of one", Config{Links: LinksConfig{TimeLeftFraction: 1}}, true},
		{"jitter zero disables variation", Config{Links: LinksConfig{Jitter: 0}}, false},
		{"curve factor too steep", Config{Links: LinksConfig{CurveFactor: 3}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetLinksConfig_FillsZeroValues(t *testing.T) {
	cfg := Config{Links: LinksConfig{EdgeMargin: 25}}

	links := cfg.GetLinksConfig()
	assert.Equal(t, 25.0, links.EdgeMargin)
	assert.Equal(t, 1.0, links.MinDistance)
	assert.Equal(t, LinkModeDirectLinks, links.DefaultMode)
	assert.Equal(t, 0.0, links.Jitter)
}

func TestGetters_Defaults(t *testing.T) {
	var cfg Config
	assert.Equal(t, DefaultServerPort, cfg.GetServerPort())
	assert.Equal(t, "crossview.db", cfg.GetDatabasePath())
	assert.Equal(t, "everforest", cfg.GetServerLogTheme())
	assert.Equal(t, DefaultMaxClients, cfg.GetServerMaxClients())
	assert.Contains(t, cfg.GetServerAllowedOrigins(), "http://localhost")
	assert.Contains(t, cfg.String(), "crossview.db")
}

func TestFindProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("prefers crossview.toml", func(t *testing.T) {
		subDir := filepath.Join(tmpDir, "test1", "subdir")
		require.NoError(t, os.MkdirAll(subDir, DefaultDirPermissions))
		os.WriteFile(filepath.Join(tmpDir, "test1", "crossview.toml"), []byte(""), DefaultFilePermissions)
		os.WriteFile(filepath.Join(tmpDir, "test1", "am.toml"), []byte(""), DefaultFilePermissions)

		chdir(t, subDir)

		result := findProjectConfig()
		require.NotEmpty(t, result)
		assert.True(t, filepath.IsAbs(result))
		assert.Equal(t, "crossview.toml", filepath.Base(result))
	})

	t.Run("falls back to am.toml", func(t *testing.T) {
		subDir := filepath.Join(tmpDir, "test2", "subdir")
		require.NoError(t, os.MkdirAll(subDir, DefaultDirPermissions))
		os.WriteFile(filepath.Join(tmpDir, "test2", "am.toml"), []byte(""), DefaultFilePermissions)

		chdir(t, subDir)

		assert.Equal(t, "am.toml", filepath.Base(findProjectConfig()))
	})

	t.Run("no config found", func(t *testing.T) {
		subDir := filepath.Join(tmpDir, "test3", "subdir")
		require.NoError(t, os.MkdirAll(subDir, DefaultDirPermissions))

		chdir(t, subDir)

		assert.Empty(t, findProjectConfig())
	})
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)

	userDir := filepath.Join(dir, ".crossview")
	require.NoError(t, os.MkdirAll(userDir, DefaultDirPermissions))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "am.toml"), []byte(`
[database]
path = "user.db"

[links]
edge_margin = 12.0
`), DefaultFilePermissions))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crossview.toml"), []byte(`
[database]
path = "project.db"
`), DefaultFilePermissions))
	t.Setenv("CROSSVIEW_LINKS_DEFAULT_MODE", "loop_links")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "project.db", cfg.Database.Path, "project overrides user")
	assert.Equal(t, 12.0, cfg.Links.EdgeMargin, "user overrides default")
	assert.Equal(t, LinkModeLoopLinks, cfg.Links.DefaultMode, "env overrides everything")
	assert.Equal(t, filepath.Join(dir, "crossview.toml"), ActiveConfigFile())

	introspection, err := GetConfigIntrospection()
	require.NoError(t, err)

	bySource := map[string]SettingInfo{}
	for _, s := range introspection.Settings {
		bySource[s.Key] = s
	}
	assert.Equal(t, SourceProject, bySource["database.path"].Source)
	assert.Equal(t, SourceUser, bySource["links.edge_margin"].Source)
	assert.Equal(t, SourceEnvironment, bySource["links.default_mode"].Source)
	assert.Equal(t, SourceDefault, bySource["links.curve_factor"].Source)
}

func TestUpdateLinkDefaultMode(t *testing.T) {
	dir := isolate(t)
	uiPath := filepath.Join(dir, ".crossview", "am_from_ui.toml")

	require.NoError(t, UpdateLinkDefaultMode(LinkModeHighlightOnly))
	require.FileExists(t, uiPath)
	assert.NoFileExists(t, uiPath+".back1")

	require.NoError(t, UpdateLinkDefaultMode(LinkModeLoopLinks))
	assert.FileExists(t, uiPath+".back1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, LinkModeLoopLinks, cfg.Links.DefaultMode)

	assert.Error(t, UpdateLinkDefaultMode("rainbow"))
}

func TestUpdateLinkDefaultMode_MarksOwnWrite(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "crossview.toml")
	require.NoError(t, os.WriteFile(path, []byte("[links]\njitter = 0.1\n"), DefaultFilePermissions))

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	SetGlobalWatcher(cw)
	defer SetGlobalWatcher(nil)
	defer cw.Stop()

	assert.Same(t, cw, GetGlobalWatcher())
	require.NoError(t, UpdateLinkDefaultMode(LinkModeDirectLinks))
	assert.True(t, cw.checkOwnWrite())
	assert.False(t, cw.checkOwnWrite())
}

func TestLoadFromFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "other.toml")
	require.NoError(t, os.WriteFile(path, []byte("[links]\ndefault_mode = \"loop_links\"\n"), DefaultFilePermissions))
	t.Setenv("CROSSVIEW_LINKS_DEFAULT_MODE", "highlight_only")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, LinkModeLoopLinks, cfg.Links.DefaultMode)
	assert.Equal(t, "UTC", cfg.Database.Timezone)

	_, err = LoadFromFile(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestCreateBackup_Rotates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "am_from_ui.toml")

	for _, content := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, os.WriteFile(path, []byte(content), DefaultFilePermissions))
		require.NoError(t, createBackup(path))
	}

	read := func(p string) string {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, "e", read(path+".back1"))
	assert.Equal(t, "d", read(path+".back2"))
	assert.Equal(t, "c", read(path+".back3"))
}

func TestIsBackupFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/x/am.toml.back1", true},
		{"/x/am_from_ui.toml.back3", true},
		{"/x/crossview.toml.back2", true},
		{"/x/am.toml", false},
		{"/x/notes.back1", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isBackupFile(tt.path), tt.path)
	}
}

func TestConfigWatcher_ReloadsOnWrite(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "crossview.toml")
	require.NoError(t, os.WriteFile(path, []byte("[links]\njitter = 0.1\n"), DefaultFilePermissions))

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	cw.debouncePeriod = 10 * time.Millisecond

	reloaded := make(chan *Config, 1)
	cw.OnReload(func(cfg *Config) error {
		select {
		case reloaded <- cfg:
		default:
		}
		return nil
	})
	cw.Start()
	defer cw.Stop()

	require.NoError(t, os.WriteFile(path, []byte("[links]\njitter = 0.05\n"), DefaultFilePermissions))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 0.05, cfg.Links.Jitter)
	case <-time.After(5 * time.Second):
		t.Fatal("config watcher did not reload")
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+)
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
