package engine

import "fmt"

// Classify buckets value into one of outcomeCount outcomes by plain modulo.
// There is no rejection sampling: the bias of a modulo over the hash space
// is part of the published fairness model.
func Classify(value uint64, outcomeCount int) int {
	if outcomeCount < 1 {
		panic(fmt.Sprintf("engine: outcome count must be >= 1, got %d", outcomeCount))
	}
	return int(value % uint64(outcomeCount))
}

// SliceSpec describes how a game cuts integers out of its round hash.
type SliceSpec struct {
	Algorithm  Algorithm
	ChunkWidth int // hex chars parsed per outcome, at most 16
	Count      int
	Stride     int // distance between chunk starts; zero means ChunkWidth
}

func (s SliceSpec) stride() int {
	if s.Stride == 0 {
		return s.ChunkWidth
	}
	return s.Stride
}

// RequiredChars is how many hex characters s consumes.
func (s SliceSpec) RequiredChars() int {
	if s.Count == 0 {
		return 0
	}
	return s.stride()*(s.Count-1) + s.ChunkWidth
}

// Slices returns the raw hex chunks s reads from hash.
func (s SliceSpec) Slices(hash string) ([]string, error) {
	if err := ValidateHashLength(s.Algorithm, hash); err != nil {
		return nil, err
	}
	if need := s.RequiredChars(); len(hash) < need {
		return nil, fmt.Errorf("%w: required %d hex chars, got %d", ErrInsufficientHashLength, need, len(hash))
	}

	out := make([]string, s.Count)
	step := s.stride()
	for i := range out {
		start := i * step
		out[i] = hash[start : start+s.ChunkWidth]
	}
	return out, nil
}

// Classified is one resolved chunk, kept so callers can show their work.
type Classified struct {
	Hex      string `json:"hex"`
	Value    uint64 `json:"value"`
	Position int    `json:"position"`
}

// Classify parses every chunk and buckets it into outcomeCount outcomes.
func (s SliceSpec) Classify(hash string, outcomeCount int) ([]Classified, error) {
	slices, err := s.Slices(hash)
	if err != nil {
		return nil, err
	}

	out := make([]Classified, len(slices))
	for i, chunk := range slices {
		v, err := ParseHex(chunk)
		if err != nil {
			return nil, err
		}
		out[i] = Classified{Hex: chunk, Value: v, Position: Classify(v, outcomeCount)}
	}
	return out, nil
}

// Resolve runs the slice → parse → classify pipeline and maps each
// classified chunk through label.
func Resolve[T any](hash string, spec SliceSpec, outcomeCount int, label func(c Classified) T) ([]T, error) {
	classified, err := spec.Classify(hash, outcomeCount)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(classified))
	for i, c := range classified {
		out[i] = label(c)
	}
	return out, nil
}
