package bigquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirekitlabs/hirekit-backend/pkg/config"
)

func TestConfiguredTablesTrimsWhitespace(t *testing.T) {
	tables := configuredTables(config.BigQueryConfig{OrderEventsTable: " order_events "})
	require.Len(t, tables, 1)
	assert.Equal(t, "order_events", tables[0])
}

func TestConfiguredTablesEmptyConfig(t *testing.T) {
	assert.Empty(t, configuredTables(config.BigQueryConfig{}))
}

func TestCredentialOptionsPreferInlineJSON(t *testing.T) {
	opts := credentialOptions(config.GCPConfig{
		CredentialsJSON:        `{"dummy": "value"}`,
		ApplicationCredentials: "/tmp/creds",
	})
	assert.Len(t, opts, 1)
}

func TestCredentialOptionsFallBackToFile(t *testing.T) {
	opts := credentialOptions(config.GCPConfig{ApplicationCredentials: "/tmp/creds"})
	assert.Len(t, opts, 1)
}

func TestCredentialOptionsDefaultToADC(t *testing.T) {
	assert.Empty(t, credentialOptions(config.GCPConfig{}))
}
