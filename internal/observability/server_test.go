// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package observability

import (
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/holomush/propsuite/pkg/suite"
	"github.com/holomush/propsuite/pkg/validate"
)

func startServer(t *testing.T, ready ReadinessChecker, regs ...Registration) *Server {
	t.Helper()
	server := NewServer("127.0.0.1:0", ready, regs...)
	_, err := server.Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	})
	return server
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec,noctx // test URL
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_Metrics(t *testing.T) {
	server := startServer(t, nil, suite.RegisterMetrics, validate.RegisterMetrics)

	server.Metrics().RecordAction("gain", "describe", "OK", 5*time.Millisecond)
	server.Metrics().SetPluginsLoaded(2)
	suite.Calls.WithLabelValues("getInt", "OK").Inc()

	code, body := get(t, "http://"+server.Addr()+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "go_")
	assert.Contains(t, body, "process_")
	assert.Contains(t, body, `propsuite_plugin_actions_total{action="describe",plugin="gain",status="OK"} 1`)
	assert.Contains(t, body, "propsuite_plugins_loaded 2")
	assert.Contains(t, body, "propsuite_suite_calls_total")
	assert.Contains(t, body, "propsuite_plugin_action_duration_seconds")
}

func TestServer_Probes(t *testing.T) {
	var ready atomic.Bool
	server := startServer(t, ready.Load)
	base := "http://" + server.Addr()

	code, body := get(t, base+"/healthz/liveness")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok\n", body)

	code, body = get(t, base+"/healthz/readiness")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not ready\n", body)

	ready.Store(true)
	code, _ = get(t, base+"/healthz/readiness")
	assert.Equal(t, http.StatusOK, code)
}

func TestServer_StartTwice(t *testing.T) {
	server := startServer(t, nil)
	_, err := server.Start()
	assert.Error(t, err)
}

func TestServer_StartBadAddr(t *testing.T) {
	server := NewServer("256.0.0.1:bad", nil)
	_, err := server.Start()
	require.Error(t, err)
	assert.Empty(t, server.Addr())

	assert.NoError(t, server.Stop(context.Background()), "stopping a server that never started is a no-op")
}

func TestServer_StopClosesErrorChannel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	server := NewServer("127.0.0.1:0", nil)
	errCh, err := server.Start()
	require.NoError(t, err)

	require.NoError(t, server.Stop(context.Background()))
	select {
	case _, ok := <-errCh:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("error channel not closed")
	}
}
