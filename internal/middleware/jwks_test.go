package middleware_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jaekwang-park/todo-resolver/internal/middleware"
)

type testJWK struct {
	kid string
	use string
	key *rsa.PrivateKey
}

func newTestJWK(t *testing.T, kid, use string) testJWK {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}
	return testJWK{kid: kid, use: use, key: privKey}
}

func encodeJWKS(t *testing.T, keys ...testJWK) []byte {
	t.Helper()
	entries := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, map[string]any{
			"kty": "RSA",
			"kid": k.kid,
			"use": k.use,
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(k.key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(k.key.E)).Bytes()),
		})
	}
	data, err := json.Marshal(map[string]any{"keys": entries})
	if err != nil {
		t.Fatalf("failed to marshal JWKS: %v", err)
	}
	return data
}

// generateTestJWKS returns a one-key JWKS document and its private key.
func generateTestJWKS(t *testing.T, kid string) ([]byte, *rsa.PrivateKey) {
	t.Helper()
	k := newTestJWK(t, kid, "sig")
	return encodeJWKS(t, k), k.key
}

func serveJWKS(t *testing.T, body []byte, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestJWKSClient_FetchKey(t *testing.T) {
	jwksData, privKey := generateTestJWKS(t, "test-kid-1")
	server := serveJWKS(t, jwksData, nil)

	client := middleware.NewJWKSClient(server.URL)

	pubKey, err := client.GetKey(context.Background(), "test-kid-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pubKey.N.Cmp(privKey.N) != 0 {
		t.Error("public key N does not match private key N")
	}
	if pubKey.E != privKey.E {
		t.Errorf("expected exponent %d, got %d", privKey.E, pubKey.E)
	}
}

func TestJWKSClient_SkipsEncryptionKeys(t *testing.T) {
	sig := newTestJWK(t, "sig-kid", "sig")
	enc := newTestJWK(t, "enc-kid", "enc")
	server := serveJWKS(t, encodeJWKS(t, sig, enc), nil)

	client := middleware.NewJWKSClient(server.URL)

	if _, err := client.GetKey(context.Background(), "sig-kid"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.GetKey(context.Background(), "enc-kid"); err == nil {
		t.Fatal("expected encryption key to be ignored")
	}
}

func TestJWKSClient_KeyNotFound(t *testing.T) {
	jwksData, _ := generateTestJWKS(t, "test-kid-1")
	server := serveJWKS(t, jwksData, nil)

	client := middleware.NewJWKSClient(server.URL)

	_, err := client.GetKey(context.Background(), "nonexistent-kid")
	if err == nil {
		t.Fatal("expected error for missing kid, got nil")
	}
}

func TestJWKSClient_CachesKeys(t *testing.T) {
	jwksData, _ := generateTestJWKS(t, "cached-kid")
	var calls atomic.Int32
	server := serveJWKS(t, jwksData, &calls)

	client := middleware.NewJWKSClient(server.URL)

	for i := 0; i < 2; i++ {
		if _, err := client.GetKey(context.Background(), "cached-kid"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 fetch call, got %d", n)
	}
}

func TestJWKSClient_ConcurrentMissesShareFetch(t *testing.T) {
	jwksData, _ := generateTestJWKS(t, "shared-kid")
	var calls atomic.Int32
	server := serveJWKS(t, jwksData, &calls)

	client := middleware.NewJWKSClient(server.URL)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.GetKey(context.Background(), "shared-kid"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	// Callers that arrive after the first fetch completes are rate limited
	// or served from cache, so the endpoint is hit exactly once.
	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 fetch call, got %d", n)
	}
}

func TestJWKSClient_RateLimitRefreshOnMissingKid(t *testing.T) {
	jwksData, _ := generateTestJWKS(t, "kid-v1")
	var calls atomic.Int32
	server := serveJWKS(t, jwksData, &calls)

	client := middleware.NewJWKSClient(server.URL)

	// Prime the cache
	_, _ = client.GetKey(context.Background(), "kid-v1")

	// A different kid must not trigger another fetch yet
	if _, err := client.GetKey(context.Background(), "kid-v2"); err == nil {
		t.Fatal("expected error for missing kid")
	}

	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 fetch call (rate limited), got %d", n)
	}
}

func TestJWKSClient_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := middleware.NewJWKSClient(server.URL)

	if _, err := client.GetKey(context.Background(), "any-kid"); err == nil {
		t.Fatal("expected error on server error, got nil")
	}
}

func TestJWKSClient_CanceledContext(t *testing.T) {
	jwksData, _ := generateTestJWKS(t, "kid")
	server := serveJWKS(t, jwksData, nil)

	client := middleware.NewJWKSClient(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.GetKey(ctx, "kid"); err == nil {
		t.Fatal("expected error for canceled context")
	}

	// A failed fetch leaves the client free to retry immediately.
	if _, err := client.GetKey(context.Background(), "kid"); err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
}
