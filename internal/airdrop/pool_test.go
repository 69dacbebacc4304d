package airdrop

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinPool_SettleFoldsInputsIntoFirst(t *testing.T) {
	p := newCoinPool(coins(1000, 2000, 3000))
	d, ok := p.take(big.NewInt(1500), StrategyFirstFit)
	require.True(t, ok)
	assert.Equal(t, "0xc1", d.coin)

	p.settle([]string{"0xc1", "0xc2"})
	assert.Equal(t, big.NewInt(3500), p.byID["0xc1"].remaining)
	assert.True(t, p.byID["0xc2"].gone)
	assert.Equal(t, big.NewInt(4500), p.total())

	_, ok = p.take(big.NewInt(3600), StrategyFirstFit)
	assert.False(t, ok)
	d, ok = p.take(big.NewInt(3600), StrategyMerge)
	require.True(t, ok)
	assert.Equal(t, "0xc1", d.coin)
	assert.Equal(t, []string{"0xc0"}, d.merged)
	assert.Equal(t, big.NewInt(900), p.total())
}

func TestCoinPool_SnapshotRestore(t *testing.T) {
	p := newCoinPool(coins(1000, 1000))
	snap := p.snapshot()
	_, ok := p.take(big.NewInt(1500), StrategyMerge)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(500), p.total())
	p.restore(snap)
	assert.Equal(t, big.NewInt(2000), p.total())
	assert.False(t, p.byID["0xc1"].gone)
}

func TestCoinPool_IgnoresDuplicateObjects(t *testing.T) {
	cs := coins(1000)
	cs = append(cs, cs[0])
	assert.Equal(t, big.NewInt(1000), newCoinPool(cs).total())
}
