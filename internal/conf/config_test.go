package conf

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "5000", settings.WebServer.Port)
	assert.Equal(t, "5001", settings.Admin.Port)
	assert.True(t, settings.Admin.Enabled)
	assert.Equal(t, "data/storage.json", settings.Storage.DataFile)
	assert.Equal(t, 24*time.Hour, settings.Security.SessionTTL)
	assert.Equal(t, time.Hour, settings.Security.SweepEvery)
	assert.Equal(t, 4, settings.Security.MinPasswords)
	assert.Equal(t, 5*time.Minute, settings.Storage.AutosaveInterval)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SHERIFFD_WEBSERVER_PORT", "8080")
	t.Setenv("SHERIFFD_SECURITY_SESSIONTTL", "1h")

	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", settings.WebServer.Port)
	assert.Equal(t, time.Hour, settings.Security.SessionTTL)
}

func TestLoadRejectsMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Settings{
		WebServer: WebServerSettings{Port: "5000"},
		Admin:     AdminSettings{Enabled: true, Port: "5001"},
		Storage:   StorageSettings{DataFile: "data/storage.json"},
		Security:  SecuritySettings{SessionTTL: time.Hour, MinPasswords: 4},
	}
	assert.NoError(t, valid.validate())

	samePort := valid
	samePort.Admin.Port = "5000"
	assert.Error(t, samePort.validate())

	noTTL := valid
	noTTL.Security.SessionTTL = 0
	assert.Error(t, noTTL.validate())

	noFile := valid
	noFile.Storage.DataFile = ""
	assert.Error(t, noFile.validate())
}
