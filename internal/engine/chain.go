package engine

import "fmt"

// PreviousHash steps a hash chain one round back:
// SHA256 over the raw bytes the hex encodes.
func PreviousHash(hash string) (string, error) {
	raw, err := HexDecode(hash)
	if err != nil {
		return "", err
	}
	return HashBytes(SHA256, raw), nil
}

// WalkChain returns count hashes starting with start itself, each the
// previous of the one before, plus the cursor that continues the walk.
// Passing next back in as start yields the following page without
// recomputing this one.
func WalkChain(start string, count int) (hashes []string, next string, err error) {
	if count < 0 {
		return nil, "", fmt.Errorf("%w: chain page size must not be negative, got %d", ErrInvalidInput, count)
	}
	if _, err := HexDecode(start); err != nil {
		return nil, "", err
	}

	hashes = make([]string, 0, count)
	cur := start
	for i := 0; i < count; i++ {
		hashes = append(hashes, cur)
		if cur, err = PreviousHash(cur); err != nil {
			return nil, "", err
		}
	}
	return hashes, cur, nil
}
