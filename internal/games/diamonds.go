package games

import (
	"github.com/MJE43/pf-verify-go/internal/engine"
)

// DiamondsGame draws five gems from an HMAC-SHA512. The 128-char hash is
// cut into five 25-char chunks and the first 8 digits of each pick a gem.
type DiamondsGame struct{}

// GemType is one of the seven gems.
type GemType string

const (
	diamondsCount     = 5
	diamondsSampleHex = 8
	diamondsHexPerGem = 128 / diamondsCount // 25
)

var gemTypes = []GemType{"GEM_1", "GEM_2", "GEM_3", "GEM_4", "GEM_5", "GEM_6", "GEM_7"}

var gemColors = map[GemType]string{
	"GEM_1": "#4CAF50",
	"GEM_2": "#2196F3",
	"GEM_3": "#FF9800",
	"GEM_4": "#F44336",
	"GEM_5": "#FFEB3B",
	"GEM_6": "#E91E63",
	"GEM_7": "#9C27B0",
}

var diamondsSpec = engine.SliceSpec{
	Algorithm:  engine.SHA512,
	ChunkWidth: diamondsSampleHex,
	Count:      diamondsCount,
	Stride:     diamondsHexPerGem,
}

// Gem is one drawn gem.
type Gem struct {
	Type  GemType `json:"type"`
	Color string  `json:"color"`
	Hex   string  `json:"hex"`
}

type DiamondsDetails struct {
	Gems      []Gem `json:"gems"`
	BestMatch int   `json:"best_match"`
}

// Spec returns metadata about the Diamonds game.
func (g *DiamondsGame) Spec() GameSpec {
	return GameSpec{
		ID:          "diamonds",
		Name:        "Diamonds",
		MetricLabel: "best_match",
		Hash:        "hmac-sha512",
	}
}

// Evaluate derives the five gems of the round.
func (g *DiamondsGame) Evaluate(seeds Seeds, nonce Nonce, params map[string]any) (GameResult, error) {
	hash, err := engine.KeyedHash(engine.SHA512, seeds, nonce)
	if err != nil {
		return GameResult{}, err
	}

	gems, err := DiamondGems(hash)
	if err != nil {
		return GameResult{}, err
	}

	counts := make(map[GemType]int, len(gemTypes))
	best := 0
	for _, gem := range gems {
		counts[gem.Type]++
		if counts[gem.Type] > best {
			best = counts[gem.Type]
		}
	}

	return GameResult{
		Metric:      float64(best),
		MetricLabel: "best_match",
		Hash:        hash,
		Details: DiamondsDetails{
			Gems:      gems,
			BestMatch: best,
		},
	}, nil
}

// DiamondGems resolves the gems of a 128-char HMAC-SHA512 hash.
func DiamondGems(hash string) ([]Gem, error) {
	return engine.Resolve(hash, diamondsSpec, len(gemTypes), func(c engine.Classified) Gem {
		t := gemTypes[c.Position]
		return Gem{Type: t, Color: gemColors[t], Hex: c.Hex}
	})
}
