package games

import (
	"errors"
	"fmt"
	"sort"

	"github.com/MJE43/pf-verify-go/internal/engine"
)

type (
	Seeds = engine.Seeds
	Nonce = engine.Nonce
)

// ErrGameNotFound is returned by Derive for an unknown game id.
var ErrGameNotFound = errors.New("game not found")

// GameSpec describes a registered game.
type GameSpec struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MetricLabel string `json:"metric_label"`
	Hash        string `json:"hash"`
}

// GameResult is the outcome of one verified round. Metric is a single
// scannable number; Details carries the full game-specific outcome.
type GameResult struct {
	Metric      float64 `json:"metric"`
	MetricLabel string  `json:"metric_label"`
	Hash        string  `json:"hash,omitempty"`
	Details     any     `json:"details,omitempty"`
}

// Game recomputes a round from its seeds.
type Game interface {
	Spec() GameSpec
	Evaluate(seeds Seeds, nonce Nonce, params map[string]any) (GameResult, error)
}

// Outcome is what a player compares against the operator's claim.
type Outcome struct {
	Game           string     `json:"game"`
	CommitmentHash string     `json:"commitment_hash"`
	Result         GameResult `json:"result"`
}

var registry = map[string]Game{}

func register(g Game) {
	registry[g.Spec().ID] = g
}

func init() {
	register(&BlackjackGame{})
	register(&ChickenGame{})
	register(&CoinFlipGame{})
	register(&DiamondsGame{})
	register(&MinesweeperGame{})
	register(&TowerGame{})
	register(&TurboRollGame{})
	register(&WheelGame{})
}

// GetGame looks a game up by id.
func GetGame(id string) (Game, bool) {
	g, ok := registry[id]
	return g, ok
}

// ListGames returns every registered game sorted by id.
func ListGames() []GameSpec {
	specs := make([]GameSpec, 0, len(registry))
	for _, g := range registry {
		specs = append(specs, g.Spec())
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })
	return specs
}

// Derive recomputes one round of gameID and attaches the server seed
// commitment for display next to the result.
func Derive(gameID string, seeds Seeds, nonce Nonce, params map[string]any) (Outcome, error) {
	g, ok := GetGame(gameID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %q", ErrGameNotFound, gameID)
	}

	result, err := g.Evaluate(seeds, nonce, params)
	if err != nil {
		return Outcome{}, err
	}

	v := Outcome{Game: gameID, Result: result}
	if seeds.Server != "" {
		v.CommitmentHash = engine.CommitmentHash(seeds.Server)
	}
	return v, nil
}
