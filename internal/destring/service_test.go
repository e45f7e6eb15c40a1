package destring

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"flipfetch/internal/destring/artifactcache"
	"flipfetch/internal/logging"
)

func newTestService(t *testing.T, artifact string, run RunFunc) (*Service, *int64) {
	t.Helper()
	var fetches int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&fetches, 1)
		fmt.Fprint(w, artifact)
	}))
	t.Cleanup(server.Close)

	cache := artifactcache.New(t.TempDir(), server.Client(), logging.NewNop())
	return NewService(cache, server.URL+"/deString.js", run, logging.NewNop()), &fetches
}

func TestDecodeManifestSuccess(t *testing.T) {
	run := func(_ context.Context, _ string, ciphertext string) (string, error) {
		return "decoded:" + ciphertext, nil
	}
	service, fetches := newTestService(t, "artifact body", run)

	plaintext, err := service.DecodeManifest(context.Background(), "  abc \n")
	if err != nil {
		t.Fatalf("DecodeManifest failed: %v", err)
	}
	if plaintext != "decoded:abc" {
		t.Errorf("plaintext = %q, want decoded:abc (ciphertext should be trimmed)", plaintext)
	}
	if got := atomic.LoadInt64(fetches); got != 1 {
		t.Errorf("artifact fetches = %d, want 1", got)
	}
}

func TestDecodeManifestRefreshesStaleArtifact(t *testing.T) {
	var calls int
	run := func(context.Context, string, string) (string, error) {
		calls++
		if calls == 1 {
			return "", fmt.Errorf("%w: marker missing", ErrPayloadNotFound)
		}
		return "recovered", nil
	}
	service, fetches := newTestService(t, "artifact body", run)

	plaintext, err := service.DecodeManifest(context.Background(), "x")
	if err != nil {
		t.Fatalf("DecodeManifest failed after refresh: %v", err)
	}
	if plaintext != "recovered" {
		t.Errorf("plaintext = %q, want recovered", plaintext)
	}
	if calls != 2 {
		t.Errorf("run calls = %d, want 2 (original plus one retry)", calls)
	}
	if got := atomic.LoadInt64(fetches); got != 2 {
		t.Errorf("artifact fetches = %d, want 2 (ensure plus refresh)", got)
	}
}

func TestDecodeManifestRetriesOnlyOnce(t *testing.T) {
	var calls int
	run := func(context.Context, string, string) (string, error) {
		calls++
		return "", fmt.Errorf("%w: hook missing", ErrHookNotFound)
	}
	service, _ := newTestService(t, "artifact body", run)

	_, err := service.DecodeManifest(context.Background(), "x")
	if !errors.Is(err, ErrHookNotFound) {
		t.Fatalf("error = %v, want ErrHookNotFound", err)
	}
	if calls != 2 {
		t.Errorf("run calls = %d, want 2", calls)
	}
}

func TestDecodeManifestDoesNotRetryExecutionErrors(t *testing.T) {
	var calls int
	run := func(context.Context, string, string) (string, error) {
		calls++
		return "", fmt.Errorf("%w: boom", ErrExecution)
	}
	service, fetches := newTestService(t, "artifact body", run)

	_, err := service.DecodeManifest(context.Background(), "x")
	if !errors.Is(err, ErrExecution) {
		t.Fatalf("error = %v, want ErrExecution", err)
	}
	if calls != 1 {
		t.Errorf("run calls = %d, want 1 (execution errors are terminal)", calls)
	}
	if got := atomic.LoadInt64(fetches); got != 1 {
		t.Errorf("artifact fetches = %d, want 1", got)
	}
}

func TestDecodeManifestRejectsEmptyCiphertext(t *testing.T) {
	service, _ := newTestService(t, "artifact body", func(context.Context, string, string) (string, error) {
		t.Fatal("run should not be reached")
		return "", nil
	})
	if _, err := service.DecodeManifest(context.Background(), "   \n"); !errors.Is(err, ErrExecution) {
		t.Fatalf("error = %v, want ErrExecution", err)
	}
}

func TestDecodeManifestRequiresArtifactURL(t *testing.T) {
	cache := artifactcache.New(t.TempDir(), http.DefaultClient, logging.NewNop())
	service := NewService(cache, "  ", nil, logging.NewNop())
	if _, err := service.DecodeManifest(context.Background(), "x"); !errors.Is(err, ErrConfig) {
		t.Fatalf("error = %v, want ErrConfig", err)
	}
}
