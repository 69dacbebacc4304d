package tokens

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ligun0805/sui-airdrop/internal/sui"
)

var (
	owner = "0x" + strings.Repeat("1", 64)
	ika   = "0x7262fb2f7a3a14c888c438a3cd9b912469a58cf60f367352c46584262e8299aa::ika::IKA"
	usdc  = "0xdba34672e30cb065b1f93e3ab55318768fd6fef66c15942c9f7cb846e2f900e7::usdc::USDC"
	coin  = "0xb2f40a50fec54e308e69c71271b04a30fc470b1db683dff9e64c752bc1f6384d::coin::COIN"
)

type fakeChain struct {
	mu       sync.Mutex
	coins    map[string][]sui.Coin
	coinErr  map[string]error
	metadata map[string]*sui.CoinMetadata
	mdCalls  map[string]int
	// onMetadata runs before every metadata lookup.
	onMetadata func()
}

func (f *fakeChain) GetAllCoins(_ context.Context, _, coinType string, _, _ int) ([]sui.Coin, error) {
	if err := f.coinErr[coinType]; err != nil {
		return nil, err
	}
	return f.coins[coinType], nil
}

func (f *fakeChain) GetCoinMetadata(_ context.Context, coinType string) (*sui.CoinMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mdCalls == nil {
		f.mdCalls = map[string]int{}
	}
	f.mdCalls[coinType]++
	if f.onMetadata != nil {
		f.onMetadata()
	}
	md, ok := f.metadata[coinType]
	if !ok {
		return nil, fmt.Errorf("%s: %w", coinType, sui.ErrNoMetadata)
	}
	return md, nil
}

func c(coinType, id string, bal int64) sui.Coin {
	return sui.Coin{CoinType: coinType, ObjectID: id, Owner: owner, Balance: big.NewInt(bal)}
}

func TestWhitelist(t *testing.T) {
	assert.Equal(t, []string{ika, usdc, coin}, Whitelist())

	_, err := ParseWhitelist([]byte("tokens:\n  - type: nope\n"))
	assert.Error(t, err)
	_, err = ParseWhitelist([]byte("tokens: []\n"))
	assert.Error(t, err)
}

func TestResolve_AggregatesAndKeepsAllCoins(t *testing.T) {
	chain := &fakeChain{
		coins: map[string][]sui.Coin{
			usdc: {c(usdc, "0xa", 1500000), c(usdc, "0xb", 250000)},
			coin: {c(coin, "0xc", 7)},
		},
		coinErr: map[string]error{ika: errors.New("connection reset by peer")},
		metadata: map[string]*sui.CoinMetadata{
			usdc: {Decimals: 6, Name: "USD Coin", Symbol: "USDC"},
		},
	}
	r := NewResolver(chain, nil, nil)

	holdings, err := r.Resolve(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	assert.NotContains(t, holdings, ika)

	h := holdings[usdc]
	assert.Equal(t, big.NewInt(1750000), h.Balance)
	assert.Len(t, h.Coins, 2)
	assert.Equal(t, Descriptor{Type: usdc, Symbol: "USDC", Name: "USD Coin", Decimals: 6}, h.Token)
	assert.Equal(t, "1.75", h.Display())

	assert.Equal(t, FallbackDescriptor(coin), holdings[coin].Token)
	assert.Equal(t, "COIN", holdings[coin].Token.Symbol)
	assert.Equal(t, 9, holdings[coin].Token.Decimals)
	assert.Equal(t, 1, chain.mdCalls[usdc])
	assert.Equal(t, 1, chain.mdCalls[coin])

	sorted := r.Sorted(holdings)
	require.Len(t, sorted, 2)
	assert.Equal(t, usdc, sorted[0].Token.Type)
}

func TestResolve_CancelledDuringMetadata(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	chain := &fakeChain{
		coins:      map[string][]sui.Coin{usdc: {c(usdc, "0xa", 10)}},
		onMetadata: cancel,
	}
	holdings, err := NewResolver(chain, []string{usdc}, nil).Resolve(ctx, owner)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, holdings)
}

func TestResolve_RejectsBadOwner(t *testing.T) {
	_, err := NewResolver(&fakeChain{}, nil, nil).Resolve(context.Background(), "0x2")
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	holdings := map[string]*Holding{
		usdc: {Token: Descriptor{Type: usdc, Symbol: "USDC"}},
		coin: {Token: Descriptor{Type: coin, Symbol: "COIN"}},
	}
	h, err := Lookup(holdings, "usdc")
	require.NoError(t, err)
	assert.Equal(t, usdc, h.Token.Type)

	h, err = Lookup(holdings, coin)
	require.NoError(t, err)
	assert.Equal(t, "COIN", h.Token.Symbol)

	_, err = Lookup(holdings, "IKA")
	assert.Error(t, err)
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		n        string
		decimals int
		want     string
	}{
		{"0", 9, "0"},
		{"1000000000", 9, "1"},
		{"1500000000", 9, "1.5"},
		{"1", 9, "0.000000001"},
		{"123456789012345678901234567890", 6, "123456789012345678901234.56789"},
		{"42", 0, "42"},
		{"-2500", 3, "-2.5"},
	}
	for _, tt := range tests {
		n, _ := new(big.Int).SetString(tt.n, 10)
		assert.Equal(t, tt.want, FormatUnits(n, tt.decimals), tt.n)
	}
}
