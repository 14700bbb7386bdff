package games

import (
	"github.com/MJE43/pf-verify-go/internal/engine"
)

// ChickenGame implements the Chicken road: every step of the path is
// SAFE or DANGER, read from 4 hex digits of an HMAC-SHA512.
type ChickenGame struct{}

// PathOutcome is the state of one step.
type PathOutcome string

const (
	Safe   PathOutcome = "SAFE"
	Danger PathOutcome = "DANGER"
)

// ChickenDifficulty sets the path length and how many outcomes each step
// is drawn from. Exactly one of them is DANGER.
type ChickenDifficulty struct {
	MaxSteps      int `json:"max_steps"`
	OutcomesCount int `json:"outcomes_count"`
}

const (
	chickenDefaultDifficulty = "EASY"
	chickenHexPerStep        = 4
)

var chickenDifficulties = map[string]ChickenDifficulty{
	"EASY":   {MaxSteps: 19, OutcomesCount: 7},
	"MEDIUM": {MaxSteps: 17, OutcomesCount: 3},
	"HARD":   {MaxSteps: 11, OutcomesCount: 2},
}

// ChickenStep is one resolved step and the digits it came from.
type ChickenStep struct {
	engine.Classified
	Result PathOutcome `json:"result"`
}

type ChickenDetails struct {
	Difficulty string        `json:"difficulty"`
	Steps      []ChickenStep `json:"steps"`
	Path       []PathOutcome `json:"path"`
	SafeSteps  int           `json:"safe_steps"`
}

// Spec returns metadata about the Chicken game.
func (g *ChickenGame) Spec() GameSpec {
	return GameSpec{
		ID:          "chicken",
		Name:        "Chicken",
		MetricLabel: "safe_steps",
		Hash:        "hmac-sha512",
	}
}

// Evaluate derives the path for the requested difficulty.
func (g *ChickenGame) Evaluate(seeds Seeds, nonce Nonce, params map[string]any) (GameResult, error) {
	difficulty, err := labelParam(params, "difficulty", chickenDefaultDifficulty)
	if err != nil {
		return GameResult{}, err
	}

	hash, err := engine.KeyedHash(engine.SHA512, seeds, nonce)
	if err != nil {
		return GameResult{}, err
	}

	steps, err := ChickenPath(hash, difficulty)
	if err != nil {
		return GameResult{}, err
	}

	path := make([]PathOutcome, len(steps))
	safeSteps := -1
	for i, s := range steps {
		path[i] = s.Result
		if s.Result == Danger && safeSteps < 0 {
			safeSteps = i
		}
	}
	if safeSteps < 0 {
		safeSteps = len(steps)
	}

	return GameResult{
		Metric:      float64(safeSteps),
		MetricLabel: "safe_steps",
		Hash:        hash,
		Details: ChickenDetails{
			Difficulty: difficulty,
			Steps:      steps,
			Path:       path,
			SafeSteps:  safeSteps,
		},
	}, nil
}

// ChickenPath resolves every step of the path from an HMAC-SHA512 hash.
// A step whose value is 0 modulo the outcome count is DANGER.
func ChickenPath(hash, difficulty string) ([]ChickenStep, error) {
	cfg, ok := chickenDifficulties[difficulty]
	if !ok {
		return nil, unsupported("unknown chicken difficulty %q", difficulty)
	}

	spec := engine.SliceSpec{
		Algorithm:  engine.SHA512,
		ChunkWidth: chickenHexPerStep,
		Count:      cfg.MaxSteps,
	}
	classified, err := spec.Classify(hash, cfg.OutcomesCount)
	if err != nil {
		return nil, err
	}

	steps := make([]ChickenStep, len(classified))
	for i, c := range classified {
		result := Safe
		if c.Position == 0 {
			result = Danger
		}
		steps[i] = ChickenStep{Classified: c, Result: result}
	}
	return steps, nil
}
