package engine

import (
	"fmt"
	"strconv"
)

// Chunks slices count consecutive chunkSize-character pieces off the front
// of s. The caller asks only for what it needs; a short input is an error,
// never a silently truncated result.
func Chunks(s string, chunkSize, count int) ([]string, error) {
	if chunkSize < 1 || count < 0 {
		panic(fmt.Sprintf("engine: invalid chunk request size=%d count=%d", chunkSize, count))
	}
	required := chunkSize * count
	if len(s) < required {
		return nil, fmt.Errorf("%w: required %d hex chars, got %d", ErrInsufficientHashLength, required, len(s))
	}

	out := make([]string, count)
	for i := range out {
		out[i] = s[i*chunkSize : (i+1)*chunkSize]
	}
	return out, nil
}

// Nibbles parses each character of chunk as one hex digit.
func Nibbles(chunk string) ([]int, error) {
	out := make([]int, len(chunk))
	for i := 0; i < len(chunk); i++ {
		d, ok := nibble(chunk[i])
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a hex digit", ErrInvalidInput, chunk[i])
		}
		out[i] = d
	}
	return out, nil
}

func nibble(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

// ParseHex reads chunk (at most 16 digits) as an unsigned integer.
func ParseHex(chunk string) (uint64, error) {
	if len(chunk) == 0 || len(chunk) > 16 {
		return 0, fmt.Errorf("%w: cannot parse %d hex chars as an integer", ErrInvalidInput, len(chunk))
	}
	v, err := strconv.ParseUint(chunk, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return v, nil
}

// ParseHexPrefix parses the first n hex chars of s.
func ParseHexPrefix(s string, n int) (uint64, error) {
	if len(s) < n {
		return 0, fmt.Errorf("%w: required %d hex chars, got %d", ErrInsufficientHashLength, n, len(s))
	}
	return ParseHex(s[:n])
}
