package games

import (
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/MJE43/pf-verify-go/internal/engine"
)

// TurboRollGame spins a pointer around a circle measured in hundredths of
// a degree. The round wins when the angle lands inside the winning arc,
// whose size shrinks with the target multiplier.
type TurboRollGame struct{}

// RoundResult is WIN or LOSS.
type RoundResult string

const (
	Win  RoundResult = "WIN"
	Loss RoundResult = "LOSS"
)

const (
	turboCircleSize        = 36000
	turboHexDigits         = 13
	turboDefaultMultiplier = 1.4
)

var turboMultipliers = []float64{
	1.1, 1.2, 1.3, 1.4, 1.5, 1.6, 1.7, 1.8, 1.9, 2.0,
	3.0, 4.0, 5.0, 6.0, 7.0, 8.0, 9.0, 10.0, 15.0, 20.0, 25.0, 30.0,
}

// TurboRollMultipliers lists the supported target multipliers.
func TurboRollMultipliers() []float64 {
	return slices.Clone(turboMultipliers)
}

type TurboRollDetails struct {
	Angle        int         `json:"angle"`
	AngleDegrees float64     `json:"angle_degrees"`
	SegmentSize  int         `json:"segment_size"`
	Multiplier   float64     `json:"multiplier"`
	RTP          int         `json:"rtp"`
	WinChance    string      `json:"win_chance"`
	Result       RoundResult `json:"result"`
}

// Spec returns metadata about the Turbo Roll game.
func (g *TurboRollGame) Spec() GameSpec {
	return GameSpec{
		ID:          "turbo-roll",
		Name:        "Turbo Roll",
		MetricLabel: "angle",
		Hash:        "hmac-sha256",
	}
}

// Evaluate resolves the angle and whether it lands in the winning arc.
func (g *TurboRollGame) Evaluate(seeds Seeds, nonce Nonce, params map[string]any) (GameResult, error) {
	multiplier, err := floatParam(params, "multiplier", turboDefaultMultiplier)
	if err != nil {
		return GameResult{}, err
	}
	rtp, err := rtpParam(params)
	if err != nil {
		return GameResult{}, err
	}
	segmentSize, err := TurboSegmentSize(multiplier, rtp)
	if err != nil {
		return GameResult{}, err
	}

	hash, err := engine.KeyedHash(engine.SHA256, seeds, nonce)
	if err != nil {
		return GameResult{}, err
	}
	angle, err := TurboAngle(hash)
	if err != nil {
		return GameResult{}, err
	}

	return GameResult{
		Metric:      float64(angle),
		MetricLabel: "angle",
		Hash:        hash,
		Details: TurboRollDetails{
			Angle:        angle,
			AngleDegrees: float64(angle) / 100,
			SegmentSize:  segmentSize,
			Multiplier:   multiplier,
			RTP:          rtp,
			WinChance:    turboWinChance(segmentSize).String(),
			Result:       ResolveTurboRoll(angle, segmentSize),
		},
	}, nil
}

// TurboAngle reads the angle, in hundredths of a degree, from an
// HMAC-SHA256 hash.
func TurboAngle(hash string) (int, error) {
	if err := engine.ValidateHashLength(engine.SHA256, hash); err != nil {
		return 0, err
	}
	v, err := engine.ParseHexPrefix(hash, turboHexDigits)
	if err != nil {
		return 0, err
	}
	return engine.Classify(v, turboCircleSize), nil
}

// TurboSegmentSize is floor(360 / multiplier * rtp) hundredths of a degree.
// The rtp is not range checked: an out-of-range value simply yields an arc
// that is too large or too small.
func TurboSegmentSize(multiplier float64, rtp int) (int, error) {
	if !slices.Contains(turboMultipliers, multiplier) {
		return 0, unsupported("unsupported target multiplier: %v", multiplier)
	}
	return int(math.Floor(float64(turboCircleSize/100) / multiplier * float64(rtp))), nil
}

// ResolveTurboRoll wins strictly inside the arc; landing on its edge loses.
func ResolveTurboRoll(angle, segmentSize int) RoundResult {
	if angle < segmentSize {
		return Win
	}
	return Loss
}

// turboWinChance is the exact share of the circle covered by the arc.
func turboWinChance(segmentSize int) decimal.Decimal {
	return decimal.NewFromInt(int64(segmentSize)).Div(decimal.NewFromInt(turboCircleSize))
}
