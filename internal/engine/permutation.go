package engine

import (
	"fmt"
	"sort"
)

// NibblesPerRate is the fixed chunk width consumed by Rate.
const NibblesPerRate = 4

var powersOf16 = [NibblesPerRate]float64{16, 16 * 16, 16 * 16 * 16, 16 * 16 * 16 * 16}

// Rate reads four nibbles as a base-16 fraction in [0, 1):
// d0/16 + d1/16^2 + d2/16^3 + d3/16^4.
// Any other width is a caller bug and panics.
func Rate(nibbles []int) float64 {
	if len(nibbles) != NibblesPerRate {
		panic(fmt.Sprintf("engine: rate needs exactly %d nibbles, got %d", NibblesPerRate, len(nibbles)))
	}
	rate := 0.0
	for i, d := range nibbles {
		rate += float64(d) / powersOf16[i]
	}
	return rate
}

type indexedRate struct {
	index int
	rate  float64
}

// RatePermutation orders chunk indices by ascending rate. Equal chunks keep
// their original relative order.
func RatePermutation(chunks []string) ([]int, error) {
	rates := make([]indexedRate, len(chunks))
	for i, chunk := range chunks {
		nibbles, err := Nibbles(chunk)
		if err != nil {
			return nil, err
		}
		rates[i] = indexedRate{index: i, rate: Rate(nibbles)}
	}

	sort.SliceStable(rates, func(a, b int) bool {
		return rates[a].rate < rates[b].rate
	})

	perm := make([]int, len(rates))
	for i, r := range rates {
		perm[i] = r.index
	}
	return perm, nil
}

// PermuteHex cuts k rate chunks off the front of hex and returns their
// permutation.
func PermuteHex(hex string, k int) ([]int, error) {
	chunks, err := Chunks(hex, NibblesPerRate, k)
	if err != nil {
		return nil, err
	}
	return RatePermutation(chunks)
}
