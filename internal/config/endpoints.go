package config

import (
	"fmt"
	"strings"
)

// Endpoints holds the resolved base URLs for the game server. Neither carries
// a trailing slash.
type Endpoints struct {
	// APIBase is the HTTP base URL, e.g. "http://localhost:8080".
	APIBase string
	// WSBase is the realtime socket base URL, e.g. "ws://localhost:8080/ws".
	WSBase string
}

// ResolveEndpoints derives the HTTP and realtime socket base URLs from the
// API configuration. If no HTTP override is set it falls back to the
// development host and port. If no socket override is set the socket URL is
// derived from the HTTP base by swapping the scheme and appending "/ws".
//
// Postcondition: Returns normalized base URLs (no trailing slash) or an error
// if the HTTP base uses an unknown scheme.
func ResolveEndpoints(api APIConfig) (Endpoints, error) {
	apiBase := strings.TrimRight(api.BaseURL, "/")
	if apiBase == "" {
		apiBase = fmt.Sprintf("http://%s:%d", api.DevHost, api.DevPort)
	}

	wsBase := strings.TrimRight(api.WSBaseURL, "/")
	if wsBase == "" {
		switch {
		case strings.HasPrefix(apiBase, "https://"):
			wsBase = "wss://" + strings.TrimPrefix(apiBase, "https://") + "/ws"
		case strings.HasPrefix(apiBase, "http://"):
			wsBase = "ws://" + strings.TrimPrefix(apiBase, "http://") + "/ws"
		default:
			return Endpoints{}, fmt.Errorf("deriving socket URL: unsupported scheme in %q", apiBase)
		}
	}

	return Endpoints{APIBase: apiBase, WSBase: wsBase}, nil
}
