package games

import (
	"fmt"

	"github.com/MJE43/pf-verify-go/internal/engine"
)

// MinesweeperGame uses a hash chain instead of seeds and a nonce. Each
// round hash is salted with HMAC-SHA256(hash, salt) and the first 13 hex
// digits modulo 5 pick which of the five circles holds the bomb. Earlier
// rounds are found by walking the chain backwards.
type MinesweeperGame struct{}

// MinesweeperSalt keys every round's HMAC. The value is fixed by the
// operator and carries no meaning of its own.
const MinesweeperSalt = "00000000000000000000605c3c8df155eab4e28ef65459e46616249e8e9a4705"

const (
	minesweeperCircles     = 5
	minesweeperHexDigits   = 13
	minesweeperDefaultPage = 50
)

// MaxHistoryPage caps how many chain rounds one history page may hold.
const MaxHistoryPage = 1000

// BombRound is one round of the chain.
type BombRound struct {
	Hash string `json:"hash"`
	Bomb int    `json:"bomb"`
}

type MinesweeperDetails struct {
	Rounds     []BombRound `json:"rounds"`
	NextCursor string      `json:"next_cursor"`
}

// Spec returns metadata about the Minesweeper game.
func (g *MinesweeperGame) Spec() GameSpec {
	return GameSpec{
		ID:          "minesweeper",
		Name:        "Minesweeper",
		MetricLabel: "bomb",
		Hash:        "hash-chain",
	}
}

// Evaluate resolves a page of rounds. The round hash is params["hash"],
// or the server seed when no hash is given; params["cursor"] continues a
// previous page and params["count"] sets the page size.
func (g *MinesweeperGame) Evaluate(seeds Seeds, nonce Nonce, params map[string]any) (GameResult, error) {
	hash, err := stringParam(params, "hash", seeds.Server)
	if err != nil {
		return GameResult{}, err
	}
	cursor, err := stringParam(params, "cursor", "")
	if err != nil {
		return GameResult{}, err
	}
	if cursor != "" {
		hash = cursor
	}
	if hash == "" {
		return GameResult{}, fmt.Errorf("%w: round hash is required", engine.ErrMissingSeed)
	}

	count, err := intParam(params, "count", minesweeperDefaultPage)
	if err != nil {
		return GameResult{}, err
	}
	if count < 1 || count > MaxHistoryPage {
		return GameResult{}, unsupported("minesweeper count must be between 1 and %d, got %d", MaxHistoryPage, count)
	}

	rounds, next, err := MinesweeperHistory(hash, count)
	if err != nil {
		return GameResult{}, err
	}

	return GameResult{
		Metric:      float64(rounds[0].Bomb),
		MetricLabel: "bomb",
		Hash:        hash,
		Details: MinesweeperDetails{
			Rounds:     rounds,
			NextCursor: next,
		},
	}, nil
}

// BombIndex resolves the bomb circle (0-4) of one round hash.
func BombIndex(hash string) (int, error) {
	salted := engine.HMAC(engine.SHA256, hash, MinesweeperSalt)
	if err := engine.ValidateHashLength(engine.SHA256, salted); err != nil {
		return 0, err
	}
	v, err := engine.ParseHexPrefix(salted, minesweeperHexDigits)
	if err != nil {
		return 0, err
	}
	return engine.Classify(v, minesweeperCircles), nil
}

// MinesweeperHistory resolves count rounds starting at hash and walking
// back through the chain. next continues the walk on a later call.
func MinesweeperHistory(hash string, count int) (rounds []BombRound, next string, err error) {
	hashes, next, err := engine.WalkChain(hash, count)
	if err != nil {
		return nil, "", err
	}

	rounds = make([]BombRound, len(hashes))
	for i, h := range hashes {
		bomb, err := BombIndex(h)
		if err != nil {
			return nil, "", err
		}
		rounds[i] = BombRound{Hash: h, Bomb: bomb}
	}
	return rounds, next, nil
}
