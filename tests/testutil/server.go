package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/mockapi"
)

// SeedTime is the reference time of NewSeededStore.
var SeedTime = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

// NewSeededStore returns the demo mailbox, seeded relative to SeedTime.
func NewSeededStore(superUser bool) *mockapi.Store {
	return mockapi.Seeded(SeedTime, superUser)
}

// NewTestServer serves s over an httptest server and returns a client for
// it. The server requires token when it is non-empty. It is closed when the
// test completes.
func NewTestServer(t *testing.T, s *mockapi.Store, token string) *api.Client {
	t.Helper()

	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(mockapi.NewRouter(s, mockapi.Options{Token: token}))
	t.Cleanup(srv.Close)

	return api.NewClient(srv.URL, token).WithHTTPClient(srv.Client())
}
