package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ligun0805/sui-airdrop/internal/airdrop"
	"github.com/ligun0805/sui-airdrop/internal/recipients"
	"github.com/ligun0805/sui-airdrop/internal/tokens"
)

var (
	addrA = "0x" + strings.Repeat("a", 64)
	addrB = "0x" + strings.Repeat("b", 64)
)

func sampleReport() *airdrop.Report {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &airdrop.Report{
		State:    airdrop.StateCompleted,
		Token:    tokens.Descriptor{Type: "0x2::x::X", Symbol: "X", Decimals: 3},
		Network:  "mainnet",
		Strategy: airdrop.StrategyMerge,
		Batches:  1,
		Required: big.NewInt(3500),
		Outcomes: []airdrop.Outcome{
			{Recipient: recipients.Recipient{Address: addrA, Amount: "1.5", Row: 2}, Amount: big.NewInt(1500), Succeeded: true, Digest: "D1", Explorer: "https://suiexplorer.com/txblock/D1?network=mainnet", Batch: 1},
			{Recipient: recipients.Recipient{Address: addrB, Amount: "2", Row: 3}, Amount: big.NewInt(2000), Error: "boom, again", Batch: 1},
		},
		Started:  start,
		Finished: start.Add(1500 * time.Millisecond),
	}
}

func TestWriteCSV(t *testing.T) {
	var ok, bad bytes.Buffer
	require.NoError(t, WriteCSV(&ok, &bad, sampleReport()))
	assert.Equal(t, "address,amount,row,digest,explorer\n"+addrA+",1.5,2,D1,https://suiexplorer.com/txblock/D1?network=mainnet\n", ok.String())
	assert.Equal(t, "address,amount,row,error\n"+addrB+",2,3,\"boom, again\"\n", bad.String())

	ok.Reset()
	require.NoError(t, WriteCSV(&ok, nil, sampleReport()))
	assert.Equal(t, 2, strings.Count(ok.String(), "\n"))
}

func TestWriteJSON(t *testing.T) {
	rep := sampleReport()
	rep.Err = errors.New("stopped")
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, rep))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "completed", got["state"])
	assert.Equal(t, "3.5", got["required"])
	assert.Equal(t, "1.5s", got["duration"])
	assert.Equal(t, "stopped", got["error"])
	assert.Equal(t, float64(1), got["succeeded"])
	assert.Equal(t, []any{"D1"}, got["digests"])
	outs := got["outcomes"].([]any)
	require.Len(t, outs, 2)
	assert.Equal(t, "1500", outs[0].(map[string]any)["units"])
}

func TestSummaryAndTable(t *testing.T) {
	rep := sampleReport()
	assert.Equal(t, "X airdrop completed: 1 succeeded, 1 failed, 1 batch(es)", Summary(rep))
	var buf bytes.Buffer
	Table(&buf, rep)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "OK   row 2"))
	assert.True(t, strings.HasSuffix(lines[1], "boom, again"))
}
