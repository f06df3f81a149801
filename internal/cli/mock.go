package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/nhle/mailterm/internal/mockapi"
)

var (
	mockAddr      string
	mockToken     string
	mockSuperUser bool
	mockVerbose   bool
)

var serveMockCmd = &cobra.Command{
	Use:   "serve-mock",
	Short: "Serve an in-memory messaging API",
	Long:  "Serves a seeded, in-memory implementation of the messaging API for local development.",
	RunE:  runMock,
}

func init() {
	serveMockCmd.Flags().StringVar(&mockAddr, "addr", ":8080", "Listen address")
	serveMockCmd.Flags().StringVar(&mockToken, "token", "", "Require this bearer token")
	serveMockCmd.Flags().BoolVar(&mockSuperUser, "super-user", false, "Allow sending to everyone")
	serveMockCmd.Flags().BoolVar(&mockVerbose, "verbose", false, "Log every request")
}

func runMock(cmd *cobra.Command, args []string) error {
	if !mockVerbose {
		gin.SetMode(gin.ReleaseMode)
	}

	store := mockapi.Seeded(time.Now(), mockSuperUser)
	router := mockapi.NewRouter(store, mockapi.Options{Token: mockToken})
	if mockVerbose {
		router.Use(gin.Logger())
	}

	srv := &http.Server{
		Addr:              mockAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.ListenAndServe()
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "Mock messaging API listening on %s\n", mockAddr)

	select {
	case <-ctx.Done():
		fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving mock API: %w", err)
	}
}
