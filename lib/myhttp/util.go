package myhttp

import (
	"fmt"
	"net/http"
	"os"
)

// GuessHostnameWithScheme returns the address this service is reachable on,
// for use outside a request context (webhook subscriptions).
func GuessHostnameWithScheme() string {
	hostname := os.Getenv("HOSTNAME_WITH_SCHEME")
	if hostname != "" {
		return hostname
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return fmt.Sprintf("http://localhost:%s", port)
}

func HostnameWithScheme(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
