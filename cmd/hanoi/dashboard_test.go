package main

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/hanoiarm/pkg/actuator"
	"github.com/gwillem/hanoiarm/pkg/choreo"
	"github.com/gwillem/hanoiarm/pkg/enable"
)

type failingSignal struct{}

func (failingSignal) Enabled(context.Context) (bool, error) {
	return false, errors.New("connection refused")
}

func newTestDashboard(t *testing.T, sig choreo.EnableSignal) (dashboard, error) {
	t.Helper()
	engine, err := choreo.NewEngine(choreo.DefaultConfig(), actuator.NewRecorder())
	require.NoError(t, err)
	ctrl, err := choreo.NewController(engine, sig)
	require.NoError(t, err)

	noToggle := func(context.Context) (bool, error) { return false, nil }
	return newDashboard(context.Background(), ctrl, sig, make(chan string), make(chan error), noToggle, "dry")
}

func TestDashboard_SeedsEnableFromRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, mr.Set(enable.DefaultKey, "false"))

	d, err := newTestDashboard(t, enable.NewRedisFlag(client, "", true))
	require.NoError(t, err)
	assert.False(t, d.enabled)
	assert.Contains(t, d.View(), "DISABLED")
}

func TestDashboard_SeedsEnableFromLocalFlag(t *testing.T) {
	d, err := newTestDashboard(t, enable.NewFlag(true))
	require.NoError(t, err)
	assert.True(t, d.enabled)
	assert.Contains(t, d.View(), "ENABLED")
	assert.NotContains(t, d.View(), "DISABLED")
}

func TestDashboard_EnableReadError(t *testing.T) {
	_, err := newTestDashboard(t, failingSignal{})
	assert.ErrorContains(t, err, "connection refused")
}
