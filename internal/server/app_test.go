package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/productkeeper/internal/server/config"
	"github.com/dmitrijs2005/productkeeper/internal/server/objectstore"
	"github.com/dmitrijs2005/productkeeper/internal/server/services"
	"github.com/dmitrijs2005/productkeeper/internal/server/textgen"
)

func unconfigured() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.LogLevel = "error"
	return c
}

func TestNewApp_DegradesWithoutSettings(t *testing.T) {
	ctx := context.Background()
	c := unconfigured()

	app, err := NewApp(ctx, c)
	require.NoError(t, err)
	assert.Nil(t, app.db)

	records, err := app.initRecords(ctx)
	require.NoError(t, err)
	assert.IsType(t, services.DisabledProductService{}, records)

	store, err := initStore(ctx, c)
	require.NoError(t, err)
	assert.IsType(t, objectstore.Disabled{}, store)

	enhancer, err := initEnhancer(ctx, c)
	require.NoError(t, err)
	assert.IsType(t, textgen.Disabled{}, enhancer)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), unconfigured())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Zero(t, app.sessions.Len())
}

func TestReapInterval(t *testing.T) {
	tests := []struct {
		idle time.Duration
		want time.Duration
	}{
		{30 * time.Minute, time.Minute},
		{2 * time.Minute, 30 * time.Second},
		{2 * time.Second, time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.idle.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, reapInterval(tt.idle))
		})
	}
}
