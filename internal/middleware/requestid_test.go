package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func runRequestID(t *testing.T, inbound string) (echoed, inContext string) {
	t.Helper()
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inContext = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		req.Header.Set("X-Request-ID", inbound)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Header().Get("X-Request-ID"), inContext
}

func TestRequestIDPropagatesInboundHeader(t *testing.T) {
	echoed, inContext := runRequestID(t, "client-supplied-id")
	if echoed != "client-supplied-id" {
		t.Fatalf("echoed id = %q, want the inbound header", echoed)
	}
	if inContext != "client-supplied-id" {
		t.Fatalf("context id = %q, want the inbound header", inContext)
	}
}

func TestRequestIDMintsWhenMissing(t *testing.T) {
	echoed, inContext := runRequestID(t, "")
	if echoed == "" || echoed != inContext {
		t.Fatalf("minted id missing or inconsistent: header %q context %q", echoed, inContext)
	}
}

func TestRequestIDReplacesOversizedInboundHeader(t *testing.T) {
	long := strings.Repeat("x", maxInboundIDLength+1)
	echoed, _ := runRequestID(t, long)
	if echoed == long {
		t.Fatal("oversized inbound id must be replaced")
	}
	if echoed == "" {
		t.Fatal("replacement id missing")
	}
}
