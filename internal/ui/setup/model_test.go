package setup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailterm/internal/notice"
	"github.com/nhle/mailterm/internal/timer/timertest"
	"github.com/nhle/mailterm/internal/ui/uitest"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"https://example.com/messaging/api", true},
		{"http://localhost:8080", true},
		{"", false},
		{"   ", false},
		{"example.com", false},
		{"ftp://example.com", false},
		{"https://", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := validateURL(tt.in)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSubmitSavesAndReports(t *testing.T) {
	var gotURL, gotToken string
	save := func(baseURL, token string) error {
		gotURL, gotToken = baseURL, token
		return nil
	}
	m := New(uitest.NewEnv(timertest.New()), save)

	cmd := m.submit(" https://example.com/api/ ", " secret ")
	require.NotNil(t, cmd)
	assert.Equal(t, DoneMsg{BaseURL: "https://example.com/api", Token: "secret"}, cmd())
	assert.Equal(t, "https://example.com/api", gotURL)
	assert.Equal(t, "secret", gotToken)
}

func TestSubmitFailureShowsError(t *testing.T) {
	save := func(string, string) error { return errors.New("keyring locked") }
	m := New(uitest.NewEnv(timertest.New()), save)

	m.submit("https://example.com", "")
	assert.Equal(t, notice.Notice{Severity: notice.Danger, Text: "keyring locked"}, m.Alerts().Current())
	assert.Equal(t, "https://example.com", m.baseURL)
	assert.Contains(t, m.View(), "keyring locked")
}

func TestPrefillsConfiguredServer(t *testing.T) {
	env := uitest.NewEnv(timertest.New())
	env.Config.Server.BaseURL = "https://mail.example.com"
	m := New(env, func(string, string) error { return nil })
	assert.Equal(t, "https://mail.example.com", m.baseURL)
	assert.True(t, m.CapturesInput())
}
