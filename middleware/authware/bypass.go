package authware

import "strings"

// builtinBypassPrefixes are always skipped: OAuth2 handshake routes, the
// login page, and the health probe.
var builtinBypassPrefixes = []string{
	"/oauth2/",
	"/login",
	"/actuator/health",
}

// authFlowMarkers identify the unauthenticated operations under the auth
// API prefix. Other auth routes (me, logout) still require a token.
var authFlowMarkers = []string{
	"/login",
	"/register",
	"/refresh-token",
}

const authAPIPrefix = "/api/v1/auth/"

// ShouldBypass reports whether the request path belongs to an endpoint that
// must be reachable without credentials. extra holds caller-configured
// prefixes on top of the built-in set.
func ShouldBypass(path string, extra ...string) bool {
	for _, prefix := range builtinBypassPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	if strings.HasPrefix(path, authAPIPrefix) {
		for _, marker := range authFlowMarkers {
			if strings.Contains(path, marker) {
				return true
			}
		}
	}

	for _, prefix := range extra {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}
