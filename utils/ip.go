package utils

import (
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
)

// ResolveClientIdentity derives a stable per-caller identifier from
// proxy headers, checked most-trusted first. When no IP signal exists
// at all it falls back to a header fingerprint instead of a shared
// sentinel, so header-less clients do not all land in one rate-limit
// bucket. The fingerprint is a plain hash, not an authentication
// mechanism.
func ResolveClientIdentity(h http.Header) string {
	// CDN-injected client IP (Cloudflare)
	if ip := strings.TrimSpace(h.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}

	// Reverse-proxy real IP (nginx, Vercel)
	if ip := strings.TrimSpace(h.Get("X-Real-IP")); ip != "" {
		return ip
	}

	// Forwarded-for chain: leftmost entry is the original client
	if xff := h.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" && ip != "unknown" {
			return ip
		}
	}

	return fingerprintIdentity(h)
}

func fingerprintIdentity(h http.Header) string {
	f := fnv.New32a()
	f.Write([]byte(h.Get("User-Agent")))
	f.Write([]byte{':'})
	f.Write([]byte(h.Get("Accept-Language")))
	f.Write([]byte{':'})
	f.Write([]byte(h.Get("Accept-Encoding")))
	return "fingerprint:" + strconv.FormatUint(uint64(f.Sum32()), 36)
}
