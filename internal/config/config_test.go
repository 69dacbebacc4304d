package config

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	st, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)
	assert.Equal(t, "mainnet", st.Network)
	assert.Equal(t, "https://fullnode.mainnet.sui.io:443", st.RPCURL)
	assert.Equal(t, 10, st.BatchSize)
	assert.Equal(t, time.Second, st.BatchInterval)
	assert.Equal(t, StrategyMerge, st.CoinStrategy)
	assert.Equal(t, uint64(50000000), st.GasBudget)
}

func TestLoadFrom_LowerCaseKeysAndOverrides(t *testing.T) {
	st, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"sui_network":           "testnet",
		"AIRDROP_BATCH_SIZE":    "25",
		"AIRDROP_COIN_STRATEGY": "First-Fit",
		"SUI_RPC_URL":           "http://localhost:9000",
	}))
	require.NoError(t, err)
	assert.Equal(t, "testnet", st.Network)
	assert.Equal(t, "http://localhost:9000", st.RPCURL)
	assert.Equal(t, 25, st.BatchSize)
	assert.Equal(t, StrategyFirstFit, st.CoinStrategy)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"network", map[string]string{"SUI_NETWORK": "moon"}},
		{"batch size", map[string]string{"AIRDROP_BATCH_SIZE": "0"}},
		{"strategy", map[string]string{"AIRDROP_COIN_STRATEGY": "random"}},
		{"interval", map[string]string{"AIRDROP_BATCH_INTERVAL": "1m", "AIRDROP_MAX_BATCH_INTERVAL": "10s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestPrint_MasksKey(t *testing.T) {
	st := &Settings{Network: "mainnet", PrivateKey: "0x0123456789abcdef0123"}
	var buf bytes.Buffer
	st.Print(&buf)
	assert.NotContains(t, buf.String(), "0123456789abcdef")
	assert.Contains(t, buf.String(), "0x01…0123")
	assert.Equal(t, "(not set)", MaskSecret(""))
}
