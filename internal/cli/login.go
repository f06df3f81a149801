package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/mailterm/internal/credential"
	"github.com/nhle/mailterm/internal/model"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a session token for the server",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session token for the server",
	RunE:  runLogout,
}

// serverFor returns the server the credential commands act on.
func serverFor() (*model.AppConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Server.BaseURL == "" {
		return nil, errors.New("no server configured: pass --server")
	}
	return cfg, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := serverFor()
	if err != nil {
		return err
	}

	var token string
	err = huh.NewInput().
		Title("Session token for " + cfg.Server.BaseURL).
		EchoMode(huh.EchoModePassword).
		Value(&token).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("token is required")
			}
			return nil
		}).
		Run()
	if err != nil {
		return fmt.Errorf("reading token: %w", err)
	}

	if err := credential.Set(credential.SessionKey(cfg.Server.BaseURL), strings.TrimSpace(token)); err != nil {
		return err
	}

	// Remember the server so later runs need no --server.
	saved, err := model.LoadConfig(configPath)
	if err == nil && saved.Server.BaseURL == "" {
		saved.Server.BaseURL = cfg.Server.BaseURL
		if err := model.SaveConfig(configPath, saved); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s\n", cfg.Server.BaseURL)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, err := serverFor()
	if err != nil {
		return err
	}
	if err := credential.Delete(credential.SessionKey(cfg.Server.BaseURL)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged out of %s\n", cfg.Server.BaseURL)
	return nil
}
