package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEndpoints_DevFallback(t *testing.T) {
	eps, err := ResolveEndpoints(APIConfig{DevHost: "localhost", DevPort: 8080})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", eps.APIBase)
	assert.Equal(t, "ws://localhost:8080/ws", eps.WSBase)
}

func TestResolveEndpoints_TrimsTrailingSlash(t *testing.T) {
	eps, err := ResolveEndpoints(APIConfig{BaseURL: "http://game.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "http://game.example.com", eps.APIBase)
	assert.Equal(t, "ws://game.example.com/ws", eps.WSBase)
}

func TestResolveEndpoints_HTTPSBecomesWSS(t *testing.T) {
	eps, err := ResolveEndpoints(APIConfig{BaseURL: "https://play.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "wss://play.example.com/ws", eps.WSBase)
}

func TestResolveEndpoints_ExplicitSocketOverride(t *testing.T) {
	eps, err := ResolveEndpoints(APIConfig{
		BaseURL:   "https://play.example.com",
		WSBaseURL: "wss://rt.example.com/socket/",
	})
	require.NoError(t, err)
	assert.Equal(t, "wss://rt.example.com/socket", eps.WSBase)
}

func TestResolveEndpoints_UnknownScheme(t *testing.T) {
	_, err := ResolveEndpoints(APIConfig{BaseURL: "gopher://example.com"})
	require.Error(t, err)
}
