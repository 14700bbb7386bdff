package engine

import (
	"errors"
	"testing"
)

func TestClassifyRange(t *testing.T) {
	values := []uint64{0, 1, 2, 6, 7, 255, 65535, 1<<52 - 1, ^uint64(0)}
	for n := 1; n <= 64; n++ {
		for _, v := range values {
			got := Classify(v, n)
			if got < 0 || got >= n {
				t.Fatalf("Classify(%d, %d) = %d out of range", v, n, got)
			}
			if uint64(got) != v%uint64(n) {
				t.Fatalf("Classify(%d, %d) = %d, want %d", v, n, got, v%uint64(n))
			}
		}
	}
}

func TestClassifyPanicsOnZeroOutcomes(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Classify(1, 0)
}

func TestSliceSpec(t *testing.T) {
	hash := HMAC(SHA512, "client:1", "server")

	spec := SliceSpec{Algorithm: SHA512, ChunkWidth: 8, Count: 5, Stride: 25}
	if spec.RequiredChars() != 108 {
		t.Errorf("RequiredChars = %d, want 108", spec.RequiredChars())
	}

	slices, err := spec.Slices(hash)
	if err != nil {
		t.Fatalf("Slices failed: %v", err)
	}
	for i, s := range slices {
		if s != hash[i*25:i*25+8] {
			t.Errorf("slice %d = %q, want %q", i, s, hash[i*25:i*25+8])
		}
	}

	if _, err := spec.Slices(hash[:64]); !errors.Is(err, ErrInvalidHashLength) {
		t.Errorf("expected ErrInvalidHashLength, got %v", err)
	}

	tooMany := SliceSpec{Algorithm: SHA256, ChunkWidth: 4, Count: 17}
	if _, err := tooMany.Slices(HMAC(SHA256, "m", "k")); !errors.Is(err, ErrInsufficientHashLength) {
		t.Errorf("expected ErrInsufficientHashLength, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	hash := HMAC(SHA256, "client:1", "server")
	spec := SliceSpec{Algorithm: SHA256, ChunkWidth: 2, Count: 10}

	got, err := Resolve(hash, spec, 2, func(c Classified) bool { return c.Position == 1 })
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("expected 10 outcomes, got %d", len(got))
	}

	classified, _ := spec.Classify(hash, 2)
	for i, c := range classified {
		if got[i] != (c.Position == 1) {
			t.Errorf("outcome %d does not match its classification", i)
		}
		if c.Hex != hash[i*2:i*2+2] {
			t.Errorf("trace %d hex = %q", i, c.Hex)
		}
	}
}
