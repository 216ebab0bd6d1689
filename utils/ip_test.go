package utils

import (
	"net/http"
	"testing"
)

func headersOf(pairs ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(pairs); i += 2 {
		h.Set(pairs[i], pairs[i+1])
	}
	return h
}

func TestResolveClientIdentityPriority(t *testing.T) {
	cases := []struct {
		name    string
		headers http.Header
		want    string
	}{
		{
			name:    "cdn header wins",
			headers: headersOf("CF-Connecting-IP", "1.2.3.4", "X-Real-IP", "5.6.7.8", "X-Forwarded-For", "9.9.9.9"),
			want:    "1.2.3.4",
		},
		{
			name:    "real ip next",
			headers: headersOf("X-Real-IP", "5.6.7.8", "X-Forwarded-For", "9.9.9.9"),
			want:    "5.6.7.8",
		},
		{
			name:    "forwarded-for first entry, trimmed",
			headers: headersOf("X-Forwarded-For", " 9.9.9.9 , 10.0.0.1, 10.0.0.2"),
			want:    "9.9.9.9",
		},
	}

	for _, tc := range cases {
		if got := ResolveClientIdentity(tc.headers); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestResolveClientIdentityFingerprintDeterminism(t *testing.T) {
	h := headersOf("User-Agent", "agent-x", "Accept-Language", "en-US", "Accept-Encoding", "gzip")

	first := ResolveClientIdentity(h)
	second := ResolveClientIdentity(h)
	if first != second {
		t.Errorf("identical headers resolved differently: %q vs %q", first, second)
	}
	if first == "" {
		t.Fatal("empty identity")
	}
	if first[:12] != "fingerprint:" {
		t.Errorf("expected fingerprint fallback, got %q", first)
	}
}

func TestResolveClientIdentityFingerprintIsolation(t *testing.T) {
	a := ResolveClientIdentity(headersOf("User-Agent", "agent-a"))
	b := ResolveClientIdentity(headersOf("User-Agent", "agent-b"))
	if a == b {
		t.Error("different clients share one fingerprint bucket")
	}
}

func TestResolveClientIdentityIgnoresUnrelatedHeaders(t *testing.T) {
	base := headersOf("X-Real-IP", "5.6.7.8")
	withExtra := headersOf("X-Real-IP", "5.6.7.8", "X-Custom", "anything")

	if ResolveClientIdentity(base) != ResolveClientIdentity(withExtra) {
		t.Error("unrelated header changed the resolved identity")
	}
}
