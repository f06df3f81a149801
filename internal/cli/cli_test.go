package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailterm/internal/model"
)

// withFlags points the package flags at a temp config for one test.
func withFlags(t *testing.T, server string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	oldPath, oldServer := configPath, serverURL
	configPath, serverURL = path, server
	t.Cleanup(func() { configPath, serverURL = oldPath, oldServer })
	return path
}

func TestLoadConfigAppliesServerFlag(t *testing.T) {
	withFlags(t, "https://mail.example.com/api/")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://mail.example.com/api", cfg.Server.BaseURL)
	assert.Equal(t, 10, cfg.Messaging.InboxPerPage)
}

func TestSaveSetupWritesServer(t *testing.T) {
	path := withFlags(t, "")

	cfg := model.DefaultAppConfig()
	cfg.Messaging.InboxPerPage = 25
	require.NoError(t, saveSetup(cfg)("https://mail.example.com", ""))

	saved, err := model.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://mail.example.com", saved.Server.BaseURL)
	assert.Equal(t, 25, saved.Messaging.InboxPerPage)
	assert.Empty(t, cfg.Server.BaseURL, "the running config is updated by the app, not the saver")
}

func TestServerForRequiresServer(t *testing.T) {
	withFlags(t, "")
	t.Setenv("MAILTERM_SERVER_BASE_URL", "")

	_, err := serverFor()
	assert.ErrorContains(t, err, "--server")
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve-mock", "login", "logout"} {
		assert.True(t, names[want], want)
	}
	assert.NotNil(t, serveMockCmd.Flags().Lookup("addr"))
	assert.Equal(t, ":8080", serveMockCmd.Flags().Lookup("addr").DefValue)
}
