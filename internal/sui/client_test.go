package sui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner = "0x1111111111111111111111111111111111111111111111111111111111111111"
	usdc  = "0xdba34672e30cb065b1f93e3ab55318768fd6fef66c15942c9f7cb846e2f900e7::usdc::USDC"
)

func coinJSON(id, balance string) map[string]interface{} {
	return map[string]interface{}{
		"coinType":            usdc,
		"coinObjectId":        id,
		"version":             "1",
		"digest":              "d",
		"balance":             balance,
		"previousTransaction": "p",
	}
}

func TestGetAllCoins_FollowsCursor(t *testing.T) {
	node, srv := newFakeNode(t)
	node.handle("suix_getCoins", func(params []json.RawMessage) (interface{}, error) {
		require.Len(t, params, 4)
		var cursor *string
		require.NoError(t, json.Unmarshal(params[2], &cursor))
		if cursor == nil {
			return map[string]interface{}{
				"data":        []interface{}{coinJSON("0xa", "100"), coinJSON("0xb", "250")},
				"nextCursor":  "c1",
				"hasNextPage": true,
			}, nil
		}
		assert.Equal(t, "c1", *cursor)
		return map[string]interface{}{
			"data":        []interface{}{coinJSON("0xc", "7")},
			"nextCursor":  nil,
			"hasNextPage": false,
		}, nil
	})

	coins, err := dialFake(t, srv).GetAllCoins(context.Background(), owner, usdc, 2, 0)
	require.NoError(t, err)
	require.Len(t, coins, 3)
	assert.Equal(t, "0xa", coins[0].ObjectID)
	assert.Equal(t, big.NewInt(250), coins[1].Balance)
	assert.Equal(t, owner, coins[2].Owner)
	assert.Equal(t, 2, node.count("suix_getCoins"))
}

func TestGetAllCoins_StopsAtMaxPages(t *testing.T) {
	node, srv := newFakeNode(t)
	page := 0
	node.handle("suix_getCoins", func(params []json.RawMessage) (interface{}, error) {
		page++
		return map[string]interface{}{
			"data":        []interface{}{coinJSON(fmt.Sprintf("0x%d", page), "1")},
			"nextCursor":  fmt.Sprintf("c%d", page),
			"hasNextPage": true,
		}, nil
	})

	coins, err := dialFake(t, srv).GetAllCoins(context.Background(), owner, usdc, 1, 3)
	require.NoError(t, err)
	assert.Len(t, coins, 3)
	assert.Equal(t, 3, node.count("suix_getCoins"))
}

func TestGetCoins_BadBalance(t *testing.T) {
	node, srv := newFakeNode(t)
	node.handle("suix_getCoins", func([]json.RawMessage) (interface{}, error) {
		return map[string]interface{}{"data": []interface{}{coinJSON("0xa", "lots")}, "hasNextPage": false}, nil
	})
	_, err := dialFake(t, srv).GetCoins(context.Background(), owner, usdc, nil, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad balance")
}

func TestGetCoinMetadata(t *testing.T) {
	node, srv := newFakeNode(t)
	node.handle("suix_getCoinMetadata", func(params []json.RawMessage) (interface{}, error) {
		var ct string
		require.NoError(t, json.Unmarshal(params[0], &ct))
		if ct != usdc {
			return nil, nil
		}
		return map[string]interface{}{"decimals": 6, "name": "USD Coin", "symbol": "USDC", "description": ""}, nil
	})
	c := dialFake(t, srv)

	md, err := c.GetCoinMetadata(context.Background(), usdc)
	require.NoError(t, err)
	assert.Equal(t, 6, md.Decimals)
	assert.Equal(t, "USDC", md.Symbol)

	_, err = c.GetCoinMetadata(context.Background(), "0x9::nope::NOPE")
	assert.True(t, errors.Is(err, ErrNoMetadata))
}

func TestPay_SendsAmountsAsStrings(t *testing.T) {
	node, srv := newFakeNode(t)
	node.handle("unsafe_pay", func(params []json.RawMessage) (interface{}, error) {
		require.Len(t, params, 6)
		var amounts []string
		require.NoError(t, json.Unmarshal(params[3], &amounts))
		assert.Equal(t, []string{"1000000", "2500000"}, amounts)
		assert.Equal(t, "null", string(params[4]))
		var budget string
		require.NoError(t, json.Unmarshal(params[5], &budget))
		assert.Equal(t, "50000000", budget)
		return map[string]interface{}{"txBytes": "AAEC", "gas": []interface{}{}, "inputObjects": []interface{}{}}, nil
	})

	tx, err := dialFake(t, srv).Pay(context.Background(), owner, []string{"0xa"},
		[]string{owner, owner}, []*big.Int{big.NewInt(1000000), big.NewInt(2500000)}, 50000000)
	require.NoError(t, err)
	assert.Equal(t, "AAEC", tx.TxBytes)
}

func TestExecuteTransactionBlock(t *testing.T) {
	tests := []struct {
		name    string
		result  map[string]interface{}
		wantErr string
	}{
		{
			name:   "success",
			result: map[string]interface{}{"digest": "D1", "effects": map[string]interface{}{"status": map[string]interface{}{"status": "success"}}},
		},
		{
			name:    "failure status",
			result:  map[string]interface{}{"digest": "D2", "effects": map[string]interface{}{"status": map[string]interface{}{"status": "failure", "error": "InsufficientGas"}}},
			wantErr: "InsufficientGas",
		},
		{
			name:    "missing digest",
			result:  map[string]interface{}{},
			wantErr: "empty digest",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, srv := newFakeNode(t)
			node.handle("sui_executeTransactionBlock", func(params []json.RawMessage) (interface{}, error) {
				require.Len(t, params, 4)
				return tt.result, nil
			})
			sub, err := dialFake(t, srv).ExecuteTransactionBlock(context.Background(), "AAEC", []string{"sig"})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "D1", sub.Digest)
		})
	}
}

func TestRateLimitedResponseIsClassified(t *testing.T) {
	node, srv := newFakeNode(t)
	node.failWith(http.StatusTooManyRequests)
	_, err := dialFake(t, srv).GetCoinMetadata(context.Background(), usdc)
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.Equal(t, ErrClassRateLimited, ClassifyError(err))
}
