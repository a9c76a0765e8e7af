package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
supabase:
  url: https://project.supabase.co/
asaas:
  baseUrl: https://sandbox.asaas.com/api/v3/
`)
	c, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Server.Port)
	assert.Equal(t, 3, c.Checkout.DueDays)
	assert.Equal(t, "America/Sao_Paulo", c.Checkout.Timezone)
	assert.Equal(t, 600, c.Checkout.DedupWindowSec)
	assert.Equal(t, 900, c.Checkout.DedupTTLSec)
	assert.Equal(t, 120, c.Checkout.InFlightTTLSec)
	assert.Equal(t, "https://project.supabase.co", c.Supabase.URL)
	assert.Equal(t, "https://sandbox.asaas.com/api/v3", c.Asaas.BaseURL)
	assert.False(t, c.MysqlAudit.Enabled())
}

func TestLoadFile_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
asaas:
  apiKey: from-file
`)
	t.Setenv("CHECKOUT_ASAAS_APIKEY", "from-env")
	t.Setenv("CHECKOUT_CHECKOUT_DUEDAYS", "2")

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Asaas.APIKey)
	assert.Equal(t, 2, c.Checkout.DueDays)
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := Root{}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "asaas.webhookToken")

	c.Supabase = SupabaseCfg{URL: "https://x.supabase.co", ServiceKey: "k"}
	c.Asaas = AsaasCfg{APIKey: "a", WebhookToken: "w"}
	assert.NoError(t, c.Validate())
}
