package airdrop

import (
	"fmt"
	"math/big"

	"github.com/ligun0805/sui-airdrop/internal/recipients"
)

// ScaleAmount converts a decimal amount to smallest units, flooring any excess precision.
func ScaleAmount(amount string, decimals int) (*big.Int, error) {
	d, err := recipients.ParseAmount(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if d.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", amount)
	}
	return d.Shift(int32(decimals)).Floor().BigInt(), nil
}

// Partition splits n items into consecutive [start, end) ranges of at most size.
func Partition(n, size int) [][2]int {
	if n <= 0 || size <= 0 {
		return nil
	}
	out := make([][2]int, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}
