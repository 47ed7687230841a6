//go:build integration
// +build integration

package auth

import (
	"fmt"
	"testing"
)

func TestKeyringDBKeyRoundTrip(t *testing.T) {
	t.Setenv("PAYCYCLE_DB_KEY", "")
	t.Setenv("PAYCYCLE_KEYCHAIN_SERVICE", "paycycle-integration")
	t.Setenv("PAYCYCLE_KEYCHAIN_ACCOUNT", "db_key_test")

	if err := SaveDBKey("integration-key"); err != nil {
		t.Fatalf("SaveDBKey() unexpected error: %v", err)
	}
	defer func() {
		if err := DeleteDBKey(); err != nil {
			t.Errorf("DeleteDBKey() cleanup error: %v", err)
		}
	}()

	got, err := LoadDBKey()
	if err != nil {
		t.Fatalf("LoadDBKey() unexpected error: %v", err)
	}
	if got != "integration-key" {
		t.Fatalf("LoadDBKey() = %q, want %q", got, "integration-key")
	}
}

func Example_integrationTestCommand() {
	fmt.Println("go test -tags=integration ./internal/auth -run TestKeyringDBKeyRoundTrip -v")
	// Output: go test -tags=integration ./internal/auth -run TestKeyringDBKeyRoundTrip -v
}
