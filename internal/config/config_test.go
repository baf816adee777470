package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ecconia/logicworldd/internal/config"
)

func TestUnmarshalEnvDefaults(t *testing.T) {
	var c config.Config
	require.NoError(t, c.UnmarshalEnv(nil, false))
	require.Equal(t, "./data", c.DataDir)
	require.Equal(t, 16, c.MaxPlayers)
	require.Equal(t, "A Logic World server", c.MOTD)
	require.Equal(t, 16*time.Millisecond, c.TickInterval)
	require.Equal(t, uint16(43531), c.ListenAddr.Port())
}

func TestUnmarshalEnvOverride(t *testing.T) {
	var c config.Config
	require.NoError(t, c.UnmarshalEnv([]string{
		"LOGICWORLDD_MAX_PLAYERS=64",
		"LOGICWORLDD_MOTD=Custom server",
		"LOGICWORLDD_REQUIRE_PASSWORD=true",
	}, false))
	require.Equal(t, 64, c.MaxPlayers)
	require.Equal(t, "Custom server", c.MOTD)
	require.True(t, c.RequirePassword)
}

func TestUnmarshalEnvUnknownKey(t *testing.T) {
	var c config.Config
	err := c.UnmarshalEnv([]string{"LOGICWORLDD_NOT_A_REAL_KEY=1"}, false)
	require.Error(t, err)
}

func TestUnmarshalEnvIncremental(t *testing.T) {
	var c config.Config
	require.NoError(t, c.UnmarshalEnv([]string{"LOGICWORLDD_MAX_PLAYERS=64"}, false))
	require.NoError(t, c.UnmarshalEnv([]string{"LOGICWORLDD_MOTD=Updated"}, true))
	require.Equal(t, 64, c.MaxPlayers)
	require.Equal(t, "Updated", c.MOTD)
}
