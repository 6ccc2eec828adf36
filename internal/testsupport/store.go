package testsupport

import (
	"testing"

	"reelcam/internal/config"
	"reelcam/internal/history"
)

// MustOpenHistory opens the recording ledger for the provided config and
// registers cleanup with the test.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Logf("history close: %v", err)
		}
	})
	return store
}
