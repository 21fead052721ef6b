package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJson(t *testing.T) {
	content := `{
		"endpoint_addr_http": ":7070",
		"database_dsn": "postgres://json",
		"access_token_secret": "ja",
		"refresh_token_secret": "jr",
		"access_token_validity_duration": "15m",
		"refresh_token_validity_duration": "168h",
		"password_hash_cost": 12,
		"secure_cookies": false,
		"temp_upload_dir": "spool",
		"s3_root_user": "ju",
		"s3_root_password": "jp",
		"s3_bucket": "jb",
		"s3_region": "jg",
		"s3_base_endpoint": "http://json:9000/"
	}`

	file := filepath.Join(t.TempDir(), "server.json")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"cmd", "-c", file}

	config := &Config{}
	config.LoadDefaults()
	require.NotPanics(t, func() { parseJson(config) })

	assert.Equal(t, ":7070", config.EndpointAddrHTTP)
	assert.Equal(t, "postgres://json", config.DatabaseDSN)
	assert.Equal(t, "ja", config.AccessTokenSecret)
	assert.Equal(t, "jr", config.RefreshTokenSecret)
	assert.Equal(t, 15*time.Minute, config.AccessTokenValidityDuration)
	assert.Equal(t, 168*time.Hour, config.RefreshTokenValidityDuration)
	assert.Equal(t, 12, config.PasswordHashCost)
	assert.False(t, config.SecureCookies)
	assert.Equal(t, "spool", config.TempUploadDir)
}

func TestParseJson_NoFlag(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"cmd"}

	config := &Config{}
	config.LoadDefaults()
	parseJson(config)

	// untouched defaults
	assert.Equal(t, ":8080", config.EndpointAddrHTTP)
}

func TestParseJson_InvalidFilePanics(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(file, []byte("{"), 0o600))

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"cmd", "-c", file}

	config := &Config{}
	require.Panics(t, func() { parseJson(config) })
}
