package airdrop

import (
	"math/big"
	"sort"

	"github.com/ligun0805/sui-airdrop/internal/sui"
)

type poolCoin struct {
	id        string
	remaining *big.Int
	gone      bool
}

// coinPool tracks what is left of each spendable coin object during a run.
type coinPool struct {
	coins []*poolCoin
	byID  map[string]*poolCoin
}

func newCoinPool(coins []sui.Coin) *coinPool {
	p := &coinPool{byID: map[string]*poolCoin{}}
	for _, c := range coins {
		if c.Balance == nil || p.byID[c.ObjectID] != nil {
			continue
		}
		pc := &poolCoin{id: c.ObjectID, remaining: new(big.Int).Set(c.Balance)}
		p.coins = append(p.coins, pc)
		p.byID[c.ObjectID] = pc
	}
	return p
}

func (p *coinPool) total() *big.Int {
	sum := new(big.Int)
	for _, c := range p.coins {
		if !c.gone {
			sum.Add(sum, c.remaining)
		}
	}
	return sum
}

// draw is one recipient's claim on the pool.
type draw struct {
	coin   string
	merged []string
}

// firstFit takes amount from the first coin, in list order, that can cover it alone.
func (p *coinPool) firstFit(amount *big.Int) (draw, bool) {
	for _, c := range p.coins {
		if !c.gone && c.remaining.Cmp(amount) >= 0 {
			c.remaining.Sub(c.remaining, amount)
			return draw{coin: c.id}, true
		}
	}
	return draw{}, false
}

// merge falls back to folding the largest coins into one until it covers amount.
func (p *coinPool) merge(amount *big.Int) (draw, bool) {
	if d, ok := p.firstFit(amount); ok {
		return d, true
	}
	live := make([]*poolCoin, 0, len(p.coins))
	for _, c := range p.coins {
		if !c.gone && c.remaining.Sign() > 0 {
			live = append(live, c)
		}
	}
	sort.SliceStable(live, func(i, j int) bool { return live[i].remaining.Cmp(live[j].remaining) > 0 })

	sum := new(big.Int)
	n := 0
	for n < len(live) && sum.Cmp(amount) < 0 {
		sum.Add(sum, live[n].remaining)
		n++
	}
	if sum.Cmp(amount) < 0 {
		return draw{}, false
	}
	dst := live[0]
	d := draw{coin: dst.id}
	for _, src := range live[1:n] {
		d.merged = append(d.merged, src.id)
		src.remaining = new(big.Int)
		src.gone = true
	}
	dst.remaining = sum.Sub(sum, amount)
	return d, true
}

func (p *coinPool) take(amount *big.Int, s Strategy) (draw, bool) {
	if s == StrategyFirstFit {
		return p.firstFit(amount)
	}
	return p.merge(amount)
}

type poolSnapshot []poolCoin

func (p *coinPool) snapshot() poolSnapshot {
	out := make(poolSnapshot, len(p.coins))
	for i, c := range p.coins {
		out[i] = poolCoin{id: c.id, remaining: new(big.Int).Set(c.remaining), gone: c.gone}
	}
	return out
}

func (p *coinPool) restore(s poolSnapshot) {
	for i := range s {
		p.coins[i].remaining = new(big.Int).Set(s[i].remaining)
		p.coins[i].gone = s[i].gone
	}
}

// settle mirrors how a pay transaction leaves its inputs: everything that is
// left of them ends up in the first input coin, the rest are deleted.
func (p *coinPool) settle(inputs []string) {
	if len(inputs) < 2 {
		return
	}
	dst := p.byID[inputs[0]]
	if dst == nil {
		return
	}
	for _, id := range inputs[1:] {
		src := p.byID[id]
		if src == nil || src == dst || src.gone {
			continue
		}
		dst.remaining.Add(dst.remaining, src.remaining)
		src.remaining = new(big.Int)
		src.gone = true
	}
}
