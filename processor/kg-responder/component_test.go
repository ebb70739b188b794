package kgresponder

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRegistry struct {
	configs []component.RegistrationConfig
}

func (r *recordingRegistry) RegisterWithConfig(cfg component.RegistrationConfig) error {
	r.configs = append(r.configs, cfg)
	return nil
}

func TestNewComponentConfig(t *testing.T) {
	svc, _ := newTestServices(t, nil)

	tests := []struct {
		name    string
		raw     string
		want    Config
		wantErr bool
	}{
		{name: "defaults", raw: "", want: DefaultConfig()},
		{name: "custom prefix", raw: `{"subject_prefix": "plant.cell1", "timeout_secs": 2}`,
			want: Config{SubjectPrefix: "plant.cell1", TimeoutSecs: 2}},
		{name: "zero timeout uses default", raw: `{"timeout_secs": 0}`, want: DefaultConfig()},
		{name: "negative timeout", raw: `{"timeout_secs": -1}`, wantErr: true},
		{name: "malformed", raw: `{`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewComponent(json.RawMessage(tt.raw), component.Dependencies{}, svc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.config)
		})
	}

	_, err := NewComponent(nil, component.Dependencies{}, Services{})
	assert.Error(t, err, "services are required")
}

func TestComponentPorts(t *testing.T) {
	svc, _ := newTestServices(t, nil)
	c, err := NewComponent(json.RawMessage(`{"subject_prefix": "plant"}`), component.Dependencies{}, svc)
	require.NoError(t, err)

	assert.Equal(t, "kg-responder", c.Meta().Name)
	assert.Contains(t, c.ConfigSchema().Properties, "subject_prefix")

	inputs := c.InputPorts()
	require.Len(t, inputs, 4)
	for _, port := range inputs {
		assert.Equal(t, component.DirectionInput, port.Direction)
		natsPort, ok := port.Config.(component.NATSPort)
		require.True(t, ok)
		assert.Equal(t, "plant."+port.Name, natsPort.Subject)
	}

	outputs := c.OutputPorts()
	require.Len(t, outputs, 1)
	assert.Equal(t, component.NATSPort{Subject: "plant.events.ingested"}, outputs[0].Config)
}

func TestComponentLifecycle(t *testing.T) {
	svc, _ := newTestServices(t, nil)

	c, err := NewComponent(nil, component.Dependencies{}, svc)
	require.NoError(t, err)
	assert.Error(t, c.Start(context.Background()), "start without NATS client must fail")
	assert.False(t, c.Health().Healthy)

	client, _ := startEmbeddedNATS(t)
	c, err = NewComponent(nil, component.Dependencies{NATSClient: client}, svc)
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background()))
	assert.Error(t, c.Start(context.Background()), "second start must fail")
	assert.Equal(t, "running", c.Health().Status)

	require.NoError(t, c.Stop(time.Second))
	assert.NoError(t, c.Stop(time.Second), "stop is idempotent")
	assert.Equal(t, "stopped", c.Health().Status)

	require.NoError(t, c.Start(context.Background()), "restart after stop")
	require.NoError(t, c.Stop(time.Second))
}

func TestRegister(t *testing.T) {
	assert.Error(t, Register(nil, Services{}))

	svc, _ := newTestServices(t, nil)
	registry := &recordingRegistry{}
	require.NoError(t, Register(registry, svc))
	require.Len(t, registry.configs, 1)

	cfg := registry.configs[0]
	assert.Equal(t, "kg-responder", cfg.Name)
	assert.Equal(t, "nats", cfg.Protocol)

	instance, err := cfg.Factory(nil, component.Dependencies{})
	require.NoError(t, err)
	assert.Equal(t, "kg-responder", instance.Meta().Name)
}
