package games

import (
	"github.com/MJE43/pf-verify-go/internal/engine"
)

// CoinFlipGame reads ten flips from the first 20 hex digits of an
// HMAC-SHA256: each byte's parity picks the side.
type CoinFlipGame struct{}

// CoinSide is the result of one flip.
type CoinSide string

const (
	Heads CoinSide = "HEADS"
	Tails CoinSide = "TAILS"
)

const (
	coinMaxFlips   = 10
	coinHexPerFlip = 2
)

var coinFlipSpec = engine.SliceSpec{
	Algorithm:  engine.SHA256,
	ChunkWidth: coinHexPerFlip,
	Count:      coinMaxFlips,
}

// CoinFlip is one resolved flip.
type CoinFlip struct {
	Hex  string   `json:"hex"`
	Side CoinSide `json:"side"`
}

type CoinFlipDetails struct {
	Flips []CoinFlip `json:"flips"`
	Heads int        `json:"heads"`
	Tails int        `json:"tails"`
}

// Spec returns metadata about the Coin Flip game.
func (g *CoinFlipGame) Spec() GameSpec {
	return GameSpec{
		ID:          "coinflip",
		Name:        "Coin Flip",
		MetricLabel: "heads",
		Hash:        "hmac-sha256",
	}
}

// Evaluate derives the ten flips of the round.
func (g *CoinFlipGame) Evaluate(seeds Seeds, nonce Nonce, params map[string]any) (GameResult, error) {
	hash, err := engine.KeyedHash(engine.SHA256, seeds, nonce)
	if err != nil {
		return GameResult{}, err
	}

	flips, err := CoinFlips(hash)
	if err != nil {
		return GameResult{}, err
	}

	heads := 0
	for _, f := range flips {
		if f.Side == Heads {
			heads++
		}
	}

	return GameResult{
		Metric:      float64(heads),
		MetricLabel: "heads",
		Hash:        hash,
		Details: CoinFlipDetails{
			Flips: flips,
			Heads: heads,
			Tails: len(flips) - heads,
		},
	}, nil
}

// CoinFlips resolves the flips of an HMAC-SHA256 hash: even is HEADS.
func CoinFlips(hash string) ([]CoinFlip, error) {
	return engine.Resolve(hash, coinFlipSpec, 2, func(c engine.Classified) CoinFlip {
		side := Heads
		if c.Position == 1 {
			side = Tails
		}
		return CoinFlip{Hex: c.Hex, Side: side}
	})
}
