package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJE43/pf-verify-go/internal/engine"
	"github.com/MJE43/pf-verify-go/internal/games"
	"github.com/MJE43/pf-verify-go/internal/scan"
)

const testCommit = "b3eacd33433b31b5252351032c9b3e7a2e7aa7738d5decdf0dd6c62680853c06"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	var cli CLI
	cli.out = &buf

	parser, err := newParser(&cli, kong.Writers(&buf, &buf), kong.Exit(func(int) {}))
	require.NoError(t, err)

	ctx, err := parser.Parse(args)
	if err != nil {
		return buf.String(), err
	}
	err = ctx.Run(&cli.Globals)
	return buf.String(), err
}

func TestHashCommand(t *testing.T) {
	out, err := run(t, "hash", "server")
	require.NoError(t, err)
	assert.Equal(t, testCommit, strings.TrimSpace(out))
}

func TestGamesCommand(t *testing.T) {
	out, err := run(t, "games", "--json")
	require.NoError(t, err)

	var specs []games.GameSpec
	require.NoError(t, json.Unmarshal([]byte(out), &specs))
	assert.Len(t, specs, 8)

	out, err = run(t, "games")
	require.NoError(t, err)
	assert.Contains(t, out, "turbo-roll")
	assert.Contains(t, out, "hash-chain")
}

func TestVerifyCommand(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		metric float64
	}{
		{"coinflip", []string{"verify", "coinflip", "-s", "server", "-c", "client", "-n", "1", "--json"}, 5},
		{"chicken hard", []string{"verify", "chicken", "-s", "server", "-c", "client", "-n", "1", "-p", "difficulty=HARD", "--json"}, 0},
		{"turbo-roll", []string{"verify", "turbo-roll", "-s", "server", "-c", "client", "-n", "1", "--json"}, 27776},
		{"wheel", []string{"verify", "wheel", "-s", "server", "-c", "client", "-n", "1", "--rtp", "97", "--json"}, 3},
		{"minesweeper", []string{"verify", "minesweeper", "-p", "hash=" + testCommit, "-p", "count=1", "--json"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err, out)

			var got verifyOutput
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.Equal(t, tt.metric, got.GameResult.Metric)
		})
	}
}

func TestVerifyTextOutput(t *testing.T) {
	out, err := run(t, "verify", "turbo-roll", "-s", "server", "-c", "client", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "turbo-roll")
	assert.Contains(t, out, testCommit)
	assert.Contains(t, out, "LOSS")
}

func TestVerifyErrors(t *testing.T) {
	_, err := run(t, "verify", "nope", "-s", "server", "-c", "client")
	assert.ErrorIs(t, err, games.ErrGameNotFound)

	_, err = run(t, "verify", "coinflip", "-c", "client")
	assert.Error(t, err)
}

func TestHistoryCommand(t *testing.T) {
	out, err := run(t, "history", testCommit, "-n", "5", "--json")
	require.NoError(t, err)

	var page historyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	bombs := make([]int, len(page.Rounds))
	for i, r := range page.Rounds {
		bombs[i] = r.Bomb
	}
	assert.Equal(t, []int{0, 1, 3, 2, 3}, bombs)
	assert.NotEmpty(t, page.NextCursor)

	out, err = run(t, "history", testCommit, "-n", "2", "--cursor", page.NextCursor, "--json")
	require.NoError(t, err)
	var next historyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &next))
	require.Len(t, next.Rounds, 2)
	assert.Equal(t, page.NextCursor, next.Rounds[0].Hash)
}

func TestHistoryRejectsPageSize(t *testing.T) {
	for _, n := range []string{"-1", "1001"} {
		_, err := run(t, "history", testCommit, "--count="+n)
		assert.ErrorIs(t, err, engine.ErrInvalidInput, n)
	}
}

func TestScanCommand(t *testing.T) {
	out, err := run(t, "scan", "coinflip", "-s", "server", "-c", "client", "--from", "1", "--to", "300", "-t", "8", "--json")
	require.NoError(t, err, out)

	var result scan.ScanResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, uint64(300), result.Summary.TotalEvaluated)
	for i, hit := range result.Hits {
		assert.GreaterOrEqual(t, hit.Metric, float64(8))
		if i > 0 {
			assert.Greater(t, hit.Nonce, result.Hits[i-1].Nonce)
		}
	}
}

func TestScanRejectsUnknownOp(t *testing.T) {
	_, err := run(t, "scan", "coinflip", "-s", "server", "-c", "client", "--to", "10", "-t", "1", "--op", "approx")
	assert.Error(t, err)
}
