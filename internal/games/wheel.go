package games

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/MJE43/pf-verify-go/internal/engine"
)

// WheelGame spins a wheel whose segments tile a 10-slot multiplier
// pattern. The pattern is picked by risk level and by the RTP margin.
type WheelGame struct{}

const (
	wheelBlockSize       = 10
	wheelHexDigits       = 13
	wheelDefaultSegments = 30
	wheelMaxSegments     = 50
	wheelDefaultRisk     = "MEDIUM"
)

// Wheel multiplier patterns keyed by RTP margin (100 - RTP), then risk.
var wheelPatterns = map[int]map[string][wheelBlockSize]float64{
	1: {
		"LOW":    {1.5, 1.2, 1.2, 1.2, 0, 1.2, 1.2, 1.2, 1.2, 0},
		"MEDIUM": {0, 1.9, 0, 1.5, 0, 2, 0, 1.5, 0, 3},
		"HIGH":   {0, 0, 0, 0, 0, 0, 0, 0, 0, 9.9},
	},
	2: {
		"LOW":    {2, 1.1, 1.1, 1.1, 0, 1.1, 1.1, 1.1, 1.1, 0},
		"MEDIUM": {0, 1.9, 0, 1.4, 0, 2, 0, 1.4, 0, 3},
		"HIGH":   {0, 0, 0, 0, 0, 0, 0, 0, 0, 9.8},
	},
	3: {
		"LOW":    {2, 1.1, 1.1, 1.1, 0, 1.1, 1.1, 1.1, 1.1, 0},
		"MEDIUM": {0, 1.9, 0, 1.4, 0, 2, 0, 1.4, 0, 3},
		"HIGH":   {0, 0, 0, 0, 0, 0, 0, 0, 0, 9.7},
	},
	4: {
		"LOW":    {1.9, 1.1, 1.1, 1.1, 0, 1.1, 1.1, 1.1, 1.1, 0},
		"MEDIUM": {0, 1.8, 0, 1.4, 0, 2, 0, 1.4, 0, 3},
		"HIGH":   {0, 0, 0, 0, 0, 0, 0, 0, 0, 9.6},
	},
}

// WheelSegmentColor maps a multiplier to its display color.
func WheelSegmentColor(multiplier float64) string {
	switch {
	case multiplier == 0:
		return "#737373"
	case multiplier < 1.5:
		return "#E5E5E5"
	case multiplier < 2:
		return "#16A34A"
	case multiplier < 3:
		return "#EA580C"
	case multiplier < 4:
		return "#2563EB"
	default:
		return "#9333EA"
	}
}

// WheelSegment is one slot of the wheel.
type WheelSegment struct {
	Multiplier float64 `json:"multiplier"`
	Color      string  `json:"color"`
}

type WheelDetails struct {
	Segments     int            `json:"segments"`
	Risk         string         `json:"risk"`
	RTP          int            `json:"rtp"`
	Index        int            `json:"index"`
	Multiplier   float64        `json:"multiplier"`
	Color        string         `json:"color"`
	Result       RoundResult    `json:"result"`
	Layout       []WheelSegment `json:"layout"`
	Legend       []WheelSegment `json:"legend"`
	ExpectedRTP  string         `json:"expected_rtp"`
}

// Spec returns metadata about the Wheel game.
func (g *WheelGame) Spec() GameSpec {
	return GameSpec{
		ID:          "wheel",
		Name:        "Wheel",
		MetricLabel: "multiplier",
		Hash:        "hmac-sha512",
	}
}

// Evaluate builds the layout and picks the winning segment.
func (g *WheelGame) Evaluate(seeds Seeds, nonce Nonce, params map[string]any) (GameResult, error) {
	segments, err := intParam(params, "segments", wheelDefaultSegments)
	if err != nil {
		return GameResult{}, err
	}
	risk, err := labelParam(params, "risk", wheelDefaultRisk)
	if err != nil {
		return GameResult{}, err
	}
	rtp, err := rtpParam(params)
	if err != nil {
		return GameResult{}, err
	}

	layout, err := WheelLayout(segments, risk, rtp)
	if err != nil {
		return GameResult{}, err
	}
	legend, err := WheelLegend(risk, rtp)
	if err != nil {
		return GameResult{}, err
	}

	hash, err := engine.KeyedHash(engine.SHA512, seeds, nonce)
	if err != nil {
		return GameResult{}, err
	}
	index, err := WheelSegmentIndex(hash, len(layout))
	if err != nil {
		return GameResult{}, err
	}

	won := layout[index]
	result := Loss
	if won.Multiplier > 0 {
		result = Win
	}

	return GameResult{
		Metric:      won.Multiplier,
		MetricLabel: "multiplier",
		Hash:        hash,
		Details: WheelDetails{
			Segments:    segments,
			Risk:        risk,
			RTP:         rtp,
			Index:       index,
			Multiplier:  won.Multiplier,
			Color:       won.Color,
			Result:      result,
			Layout:      layout,
			Legend:      legend,
			ExpectedRTP: wheelExpectedRTP(layout).String(),
		},
	}, nil
}

func wheelPattern(risk string, rtp int) ([wheelBlockSize]float64, error) {
	byRisk, ok := wheelPatterns[100-rtp]
	if !ok {
		return [wheelBlockSize]float64{}, unsupported("multipliers not resolved for rtp %d", rtp)
	}
	pattern, ok := byRisk[risk]
	if !ok {
		return [wheelBlockSize]float64{}, unsupported("unknown wheel risk %q", risk)
	}
	return pattern, nil
}

// WheelLayout tiles the risk pattern until the wheel has segments slots.
// segments must be a multiple of 10 between 10 and 50.
func WheelLayout(segments int, risk string, rtp int) ([]WheelSegment, error) {
	if segments <= 0 || segments > wheelMaxSegments || segments%wheelBlockSize != 0 {
		return nil, unsupported("wheel segments must be a multiple of %d up to %d, got %d", wheelBlockSize, wheelMaxSegments, segments)
	}
	pattern, err := wheelPattern(risk, rtp)
	if err != nil {
		return nil, err
	}

	layout := make([]WheelSegment, 0, segments)
	for i := 0; i < segments/wheelBlockSize; i++ {
		for _, m := range pattern {
			layout = append(layout, WheelSegment{Multiplier: m, Color: WheelSegmentColor(m)})
		}
	}
	return layout, nil
}

// WheelLegend lists the distinct multipliers of a pattern in ascending order.
func WheelLegend(risk string, rtp int) ([]WheelSegment, error) {
	pattern, err := wheelPattern(risk, rtp)
	if err != nil {
		return nil, err
	}

	unique := slices.Clone(pattern[:])
	slices.Sort(unique)
	unique = slices.Compact(unique)

	legend := make([]WheelSegment, len(unique))
	for i, m := range unique {
		legend[i] = WheelSegment{Multiplier: m, Color: WheelSegmentColor(m)}
	}
	return legend, nil
}

// WheelSegmentIndex reads the winning slot from an HMAC-SHA512 hash.
func WheelSegmentIndex(hash string, totalSegments int) (int, error) {
	if err := engine.ValidateHashLength(engine.SHA512, hash); err != nil {
		return 0, err
	}
	v, err := engine.ParseHexPrefix(hash, wheelHexDigits)
	if err != nil {
		return 0, err
	}
	return engine.Classify(v, totalSegments), nil
}

// wheelExpectedRTP is the mean multiplier of the layout, computed exactly.
func wheelExpectedRTP(layout []WheelSegment) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range layout {
		sum = sum.Add(decimal.NewFromFloat(s.Multiplier))
	}
	return sum.Div(decimal.NewFromInt(int64(len(layout))))
}
