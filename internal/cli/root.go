// Package cli wires the mailterm commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/app"
	"github.com/nhle/mailterm/internal/credential"
	"github.com/nhle/mailterm/internal/model"
)

var (
	configPath string
	serverURL  string
	debugLog   string
)

var rootCmd = &cobra.Command{
	Use:           "mailterm",
	Short:         "Terminal client for the messaging service",
	Long:          "Reads, sends and deletes messages and notifications of a messaging server from the terminal.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Messaging API base URL (overrides the config file)")
	rootCmd.Flags().StringVar(&debugLog, "debug-log", "", "Write debug logs to this file")

	rootCmd.AddCommand(serveMockCmd, loginCmd, logoutCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the --server override.
func loadConfig() (*model.AppConfig, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.Server.BaseURL = strings.TrimRight(serverURL, "/")
	}
	return cfg, nil
}

func connect(baseURL, token string) api.Service {
	return api.NewClient(baseURL, token)
}

func runTUI(cmd *cobra.Command, args []string) error {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return errors.New("mailterm needs an interactive terminal")
	}

	if debugLog != "" {
		f, err := tea.LogToFile(debugLog, "mailterm")
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	opts := app.Options{
		Ctx:     ctx,
		Config:  cfg,
		Connect: connect,
		Save:    saveSetup(cfg),
	}
	if cfg.Server.BaseURL != "" {
		token, err := credential.SessionToken(cfg.Server.BaseURL)
		if err != nil {
			log.Printf("reading session token: %v", err)
		}
		opts.Service = connect(cfg.Server.BaseURL, token)
	}

	p := tea.NewProgram(app.New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// saveSetup persists the answers of the first-run form: the server to the
// config file, the token to the keyring.
func saveSetup(cfg *model.AppConfig) func(baseURL, token string) error {
	return func(baseURL, token string) error {
		next := *cfg
		next.Server.BaseURL = baseURL
		if err := model.SaveConfig(configPath, &next); err != nil {
			return err
		}
		if token == "" {
			return nil
		}
		return credential.Set(credential.SessionKey(baseURL), token)
	}
}
