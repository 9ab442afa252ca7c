//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "users-orders-api"
	ConsumerName = "order-portal"

	StateNoUsers        = "no users exist"
	StateUserExists     = "user with id 1 exists"
	StateUserHasOrder   = "user with id 1 has order with id 1"
	StateUserHasNoOrder = "user with id 1 exists without orders"
)

const (
	ExistingUserID int64 = 1
	MissingUserID  int64 = 404
	UnknownUserID  int64 = 2

	ExistingOrderID int64 = 1
)

const (
	ExampleUserName  = "Ann"
	ExampleUserEmail = "ann@x.com"
	ExampleOrderItem = "Book"
	ExampleAmount    = 10.0
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the order portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleUserPayload is the body a consumer sends to create the example user.
func ExampleUserPayload() map[string]any {
	return map[string]any{
		"name":  ExampleUserName,
		"email": ExampleUserEmail,
	}
}

// ExampleOrderPayload is the body a consumer sends to order for the example user.
func ExampleOrderPayload(userID int64) map[string]any {
	return map[string]any{
		"item":    ExampleOrderItem,
		"amount":  ExampleAmount,
		"user_id": userID,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
