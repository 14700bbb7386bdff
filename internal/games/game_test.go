package games

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/MJE43/pf-verify-go/internal/engine"
)

// Reference round shared by the per-game tests.
var testSeeds = Seeds{Server: "server", Client: "client"}

const (
	testHash256 = "50042145df160f2c8a6d2b12dbdbb748295502e9cf687b0e0fe08db72995c50d"
	testHash512 = "c2d4f9c6f4f07a59de68e159f136164e0686b02b3c8dd919877ee8a8ae45abde6b87106605e30bb8e855c864a5485ca37c29b05658e3b9e57b5c2a26d7179e32"
	testCommit  = "b3eacd33433b31b5252351032c9b3e7a2e7aa7738d5decdf0dd6c62680853c06"
)

func TestListGames(t *testing.T) {
	want := []string{"blackjack", "chicken", "coinflip", "diamonds", "minesweeper", "tower", "turbo-roll", "wheel"}

	specs := ListGames()
	if len(specs) != len(want) {
		t.Fatalf("expected %d games, got %d", len(want), len(specs))
	}
	for i, id := range want {
		if specs[i].ID != id {
			t.Errorf("game %d: expected %s, got %s", i, id, specs[i].ID)
		}
		if specs[i].Name == "" || specs[i].MetricLabel == "" || specs[i].Hash == "" {
			t.Errorf("game %s has incomplete spec: %+v", id, specs[i])
		}
	}
}

func TestGetGame(t *testing.T) {
	if _, ok := GetGame("wheel"); !ok {
		t.Error("expected wheel to be registered")
	}
	if _, ok := GetGame("limbo"); ok {
		t.Error("expected limbo to be unknown")
	}
}

func TestDerive(t *testing.T) {
	v, err := Derive("coinflip", testSeeds, "1", nil)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if v.Game != "coinflip" {
		t.Errorf("expected game coinflip, got %s", v.Game)
	}
	if v.CommitmentHash != testCommit {
		t.Errorf("expected commitment %s, got %s", testCommit, v.CommitmentHash)
	}
	if v.Result.Hash != testHash256 {
		t.Errorf("expected hash %s, got %s", testHash256, v.Result.Hash)
	}
}

func TestDeriveErrors(t *testing.T) {
	tests := []struct {
		name   string
		game   string
		seeds  Seeds
		params map[string]any
		want   error
	}{
		{"unknown game", "limbo", testSeeds, nil, ErrGameNotFound},
		{"missing server seed", "coinflip", Seeds{Client: "client"}, nil, engine.ErrMissingSeed},
		{"missing client seed", "diamonds", Seeds{Server: "server"}, nil, engine.ErrMissingSeed},
		{"bad difficulty", "chicken", testSeeds, map[string]any{"difficulty": "insane"}, engine.ErrUnsupportedParameter},
		{"bad param type", "tower", testSeeds, map[string]any{"column": []int{1}}, engine.ErrUnsupportedParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Derive(tt.game, tt.seeds, "1", tt.params)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSeededGamesRequireSeeds(t *testing.T) {
	for _, spec := range ListGames() {
		if spec.Hash == "hash-chain" {
			continue
		}
		for name, seeds := range map[string]Seeds{
			"no server seed": {Client: "client"},
			"no client seed": {Server: "server"},
			"no seeds":       {},
		} {
			t.Run(spec.ID+"/"+name, func(t *testing.T) {
				if _, err := Derive(spec.ID, seeds, "1", nil); !errors.Is(err, engine.ErrMissingSeed) {
					t.Errorf("expected ErrMissingSeed, got %v", err)
				}
			})
		}
	}
}

func TestDeterminism(t *testing.T) {
	// Minesweeper reads a chain hash rather than the seeds.
	params := map[string]map[string]any{
		"minesweeper": {"hash": testCommit, "count": float64(3)},
	}

	for _, spec := range ListGames() {
		t.Run(spec.ID, func(t *testing.T) {
			a, err := Derive(spec.ID, testSeeds, "42", params[spec.ID])
			if err != nil {
				t.Fatalf("Derive failed: %v", err)
			}
			b, err := Derive(spec.ID, testSeeds, "42", params[spec.ID])
			if err != nil {
				t.Fatalf("second Derive failed: %v", err)
			}

			aj, err := json.Marshal(a)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			bj, err := json.Marshal(b)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			if !bytes.Equal(aj, bj) {
				t.Errorf("outputs differ:\n%s\n%s", aj, bj)
			}
		})
	}
}

func TestIntParam(t *testing.T) {
	tests := []struct {
		raw     any
		want    int
		wantErr bool
	}{
		{nil, 7, false},
		{3, 3, false},
		{int64(4), 4, false},
		{float64(5), 5, false},
		{" 6 ", 6, false},
		{2.5, 0, true},
		{"six", 0, true},
		{true, 0, true},
	}

	for _, tt := range tests {
		got, err := intParam(map[string]any{"n": tt.raw}, "n", 7)
		if (err != nil) != tt.wantErr {
			t.Errorf("intParam(%v): unexpected error state %v", tt.raw, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("intParam(%v) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestLabelParam(t *testing.T) {
	got, err := labelParam(map[string]any{"risk": " high "}, "risk", "MEDIUM")
	if err != nil || got != "HIGH" {
		t.Errorf("expected HIGH, got %q (%v)", got, err)
	}
	got, _ = labelParam(map[string]any{"risk": ""}, "risk", "MEDIUM")
	if got != "MEDIUM" {
		t.Errorf("expected default for blank label, got %q", got)
	}
}
