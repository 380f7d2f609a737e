package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresProviderKey(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "")

	_, err := Load("agent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ELEVENLABS_API_KEY")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "xi-test")

	conf, err := Load("agent")
	require.NoError(t, err)

	assert.Equal(t, "agent", conf.ServiceName)
	assert.Equal(t, "agent", conf.DB.DBName)
	assert.Equal(t, "8080", conf.Server.Port)
	assert.Equal(t, "https://api.elevenlabs.io/v1", conf.ElevenLabs.BaseURL)
	assert.Equal(t, "xi-test", conf.ElevenLabs.APIKey)
	assert.Equal(t, "eleven_turbo_v2", conf.ElevenLabs.ModelID)
	assert.True(t, conf.Sweep.Enabled)
	assert.Equal(t, "@every 1h", conf.Sweep.Schedule)
	assert.Equal(t, 1500, conf.Documents.ChunkSize)
	assert.Equal(t, "@every 5m", conf.Documents.RequeueSchedule)
	assert.Equal(t, 5*time.Minute, conf.Documents.RequeueMinAge)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "xi-test")
	t.Setenv("ELEVENLABS_BASE_URL", "http://localhost:9999/v1")
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("SWEEP_ENABLED", "false")
	t.Setenv("DOCUMENT_CHUNK_SIZE", "500")

	conf, err := Load("agent")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/v1", conf.ElevenLabs.BaseURL)
	assert.Equal(t, "3000", conf.Server.Port)
	assert.False(t, conf.Sweep.Enabled)
	assert.Equal(t, 500, conf.Documents.ChunkSize)
}
