package microservice_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illmade-knight/go-amqp2http/pkg/microservice"
)

func TestHealthRegistry_Healthy(t *testing.T) {
	registry := microservice.NewHealthRegistry()
	assert.True(t, registry.Healthy(), "an empty registry is healthy")

	healthy := true
	registry.AddCheck("AMQP_ldap_os2mo", func() bool { return healthy })
	registry.AddCheck("AMQP_ldap_ldap", func() bool { return true })
	assert.True(t, registry.Healthy())

	// The aggregate is the AND of all probes.
	healthy = false
	assert.False(t, registry.Healthy())

	statuses := registry.Statuses()
	assert.Equal(t, map[string]bool{
		"AMQP_ldap_os2mo": false,
		"AMQP_ldap_ldap":  true,
	}, statuses)
}

func TestServer_Healthz(t *testing.T) {
	registry := microservice.NewHealthRegistry()
	healthy := true
	registry.AddCheck("AMQP_ldap_os2mo", func() bool { return healthy })

	server := microservice.NewServer(zerolog.Nop(), ":0", registry)

	t.Run("healthy", func(t *testing.T) {
		rec := httptest.NewRecorder()
		server.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Healthy bool            `json:"healthy"`
			Checks  map[string]bool `json:"checks"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Healthy)
		assert.Equal(t, map[string]bool{"AMQP_ldap_os2mo": true}, body.Checks)
	})

	t.Run("unhealthy", func(t *testing.T) {
		healthy = false
		rec := httptest.NewRecorder()
		server.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestServer_Metrics(t *testing.T) {
	server := microservice.NewServer(zerolog.Nop(), ":0", microservice.NewHealthRegistry())

	rec := httptest.NewRecorder()
	server.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_StartShutdown(t *testing.T) {
	server := microservice.NewServer(zerolog.Nop(), ":0", microservice.NewHealthRegistry())

	require.NoError(t, server.Start())
	port := server.GetHTTPPort()
	require.NotEqual(t, ":0", port)

	resp, err := http.Get("http://127.0.0.1" + port + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))
}
