package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJE43/pf-verify-go/internal/buildinfo"
	"github.com/MJE43/pf-verify-go/internal/games"
	"github.com/MJE43/pf-verify-go/internal/scan"
)

const (
	testCommit = "b3eacd33433b31b5252351032c9b3e7a2e7aa7738d5decdf0dd6c62680853c06"
	testHash   = "50042145df160f2c8a6d2b12dbdbb748295502e9cf687b0e0fe08db72995c50d"
)

func newTestServer(t *testing.T) (*Server, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	return NewServer(Options{Clock: clock}), clock
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) EngineError {
	t.Helper()
	var e EngineError
	require.NoError(t, json.NewDecoder(w.Body).Decode(&e))
	return e
}

func TestHealthEndpoints(t *testing.T) {
	server, clock := newTestServer(t)
	h := server.Routes()

	clock.Advance(90 * time.Second).MustWait(context.Background())

	w := do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthCheckResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, HealthStatusHealthy, resp.Status)
	assert.Equal(t, "1m30s", resp.Uptime)
	assert.Equal(t, buildinfo.Version, resp.EngineVersion)
	for _, name := range []string{"games", "engine", "scanner"} {
		require.Contains(t, resp.Checks, name)
		assert.Equal(t, HealthStatusHealthy, resp.Checks[name].Status, name)
	}
	assert.Equal(t, "8 games available", resp.Checks["games"].Message)

	w = do(t, h, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ready":true`)

	w = do(t, h, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"alive":true`)
}

func TestGamesEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	w := do(t, server.Routes(), http.MethodGet, "/api/v1/games", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, buildinfo.Version, w.Header().Get("X-Engine-Version"))

	var resp GamesResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	ids := make([]string, len(resp.Games))
	for i, g := range resp.Games {
		ids[i] = g.ID
	}
	assert.Equal(t, []string{"blackjack", "chicken", "coinflip", "diamonds", "minesweeper", "tower", "turbo-roll", "wheel"}, ids)
	assert.NotEmpty(t, resp.EngineVersion)
}

func TestVerifyEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	w := do(t, server.Routes(), http.MethodPost, "/api/v1/verify", VerifyRequest{
		Game:  "coinflip",
		Seeds: games.Seeds{Server: "server", Client: "client"},
		Nonce: "1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Game           string `json:"game"`
		Nonce          string `json:"nonce"`
		CommitmentHash string `json:"commitment_hash"`
		GameResult     struct {
			Metric float64 `json:"metric"`
			Hash   string  `json:"hash"`
		} `json:"game_result"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "coinflip", resp.Game)
	assert.Equal(t, "1", resp.Nonce)
	assert.Equal(t, testCommit, resp.CommitmentHash)
	assert.Equal(t, float64(5), resp.GameResult.Metric)
}

func TestVerifyAcceptsNumericNonce(t *testing.T) {
	server, _ := newTestServer(t)

	body := `{"game":"turbo-roll","seeds":{"server":"server","client":"client"},"nonce":1}`
	w := do(t, server.Routes(), http.MethodPost, "/api/v1/verify", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"angle":27776`)
	assert.Contains(t, w.Body.String(), testHash)
}

func TestVerifyRTPOverride(t *testing.T) {
	server, _ := newTestServer(t)
	h := server.Routes()
	req := VerifyRequest{
		Game:  "wheel",
		Seeds: games.Seeds{Server: "server", Client: "client"},
		Nonce: "1",
	}

	w := do(t, h, http.MethodPost, "/api/v1/verify?rtp=99", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"rtp":99`)

	w = do(t, h, http.MethodPost, "/api/v1/verify?rtp=95", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrTypeInvalidParams, decodeError(t, w).Type)

	w = do(t, h, http.MethodPost, "/api/v1/verify?rtp=abc", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, ErrTypeValidation, e.Type)
	assert.Equal(t, "rtp", e.Context["field"])
}

func TestVerifyRTPOverrideIsPermissive(t *testing.T) {
	server, _ := newTestServer(t)
	h := server.Routes()
	req := VerifyRequest{
		Game:  "turbo-roll",
		Seeds: games.Seeds{Server: "server", Client: "client"},
		Nonce: "1",
	}

	for _, rtp := range []string{"0", "150", "-5"} {
		w := do(t, h, http.MethodPost, "/api/v1/verify?rtp="+rtp, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"rtp":`+rtp)
	}
}

func TestParseRTP(t *testing.T) {
	tests := []struct {
		raw      string
		want     int
		override bool
		wantErr  bool
	}{
		{"", 0, false, false},
		{"97", 97, true, false},
		{"0", 0, true, false},
		{"150", 150, true, false},
		{"-5", -5, true, false},
		{"9.5", 0, false, true},
		{"abc", 0, false, true},
	}
	for _, tt := range tests {
		got, override, err := parseRTP(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
		assert.Equal(t, tt.override, override, tt.raw)
	}
}

func TestVerifyMinesweeperWithoutSeeds(t *testing.T) {
	server, _ := newTestServer(t)

	w := do(t, server.Routes(), http.MethodPost, "/api/v1/verify", VerifyRequest{
		Game:   "minesweeper",
		Params: map[string]any{"hash": testCommit, "count": 1},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"commitment_hash":""`)
}

func TestVerifyErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     any
		status   int
		errType  string
		category ErrorCategory
	}{
		{"malformed body", `{"game":`, http.StatusBadRequest, ErrTypeValidation, CategoryValidation},
		{"missing game", VerifyRequest{Nonce: "1"}, http.StatusBadRequest, ErrTypeValidation, CategoryValidation},
		{"unknown game", VerifyRequest{Game: "nope", Nonce: "1"}, http.StatusBadRequest, ErrTypeGameNotFound, CategoryGame},
		{"missing seed", VerifyRequest{Game: "coinflip", Seeds: games.Seeds{Client: "client"}, Nonce: "1"}, http.StatusBadRequest, ErrTypeInvalidSeed, CategoryValidation},
		{"bad difficulty", VerifyRequest{
			Game:   "chicken",
			Seeds:  games.Seeds{Server: "server", Client: "client"},
			Nonce:  "1",
			Params: map[string]any{"difficulty": "EXPERT"},
		}, http.StatusBadRequest, ErrTypeInvalidParams, CategoryValidation},
		{"bad chain hash", VerifyRequest{Game: "minesweeper", Params: map[string]any{"hash": "zz"}}, http.StatusBadRequest, ErrTypeInvalidHash, CategoryValidation},
	}

	server, _ := newTestServer(t)
	h := server.Routes()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/v1/verify", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.errType, w.Header().Get("X-Error-Type"))
			assert.Equal(t, string(tt.category), w.Header().Get("X-Error-Category"))

			e := decodeError(t, w)
			assert.Equal(t, tt.errType, e.Type)
			assert.NotEmpty(t, e.Timestamp)
		})
	}
}

func TestScanEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	w := do(t, server.Routes(), http.MethodPost, "/api/v1/scan", ScanRequest{
		Game:       "coinflip",
		Seeds:      games.Seeds{Server: "server", Client: "client"},
		NonceStart: 1,
		NonceEnd:   200,
		TargetOp:   string(scan.OpGreaterEqual),
		TargetVal:  8,
		Limit:      5,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ScanResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, uint64(200), resp.Summary.TotalEvaluated)
	assert.LessOrEqual(t, len(resp.Hits), 5)
	for i, hit := range resp.Hits {
		assert.GreaterOrEqual(t, hit.Metric, float64(8))
		if i > 0 {
			assert.Greater(t, hit.Nonce, resp.Hits[i-1].Nonce)
		}
	}
	assert.Equal(t, "coinflip", resp.Echo.Game)
}

func TestScanIgnoresRequestTimeout(t *testing.T) {
	server := NewServer(Options{Clock: quartz.NewMock(t), RequestTimeout: time.Nanosecond})

	w := do(t, server.Routes(), http.MethodPost, "/api/v1/scan", ScanRequest{
		Game:       "coinflip",
		Seeds:      games.Seeds{Server: "server", Client: "client"},
		NonceStart: 1,
		NonceEnd:   500,
		TargetOp:   string(scan.OpGreaterEqual),
		TargetVal:  0,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ScanResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Summary.TimedOut)
	assert.Equal(t, uint64(500), resp.Summary.TotalEvaluated)
	assert.Len(t, resp.Hits, 500)
}

func TestScanValidation(t *testing.T) {
	base := func() ScanRequest {
		return ScanRequest{
			Game:       "coinflip",
			Seeds:      games.Seeds{Server: "server", Client: "client"},
			NonceStart: 1,
			NonceEnd:   10,
			TargetOp:   "ge",
			TargetVal:  5,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*ScanRequest)
		field   string
		errType string
	}{
		{"missing game", func(r *ScanRequest) { r.Game = "" }, "game", ErrTypeValidation},
		{"missing server seed", func(r *ScanRequest) { r.Seeds.Server = "" }, "seeds.server", ErrTypeValidation},
		{"missing client seed", func(r *ScanRequest) { r.Seeds.Client = "" }, "seeds.client", ErrTypeValidation},
		{"reversed range", func(r *ScanRequest) { r.NonceStart = 20 }, "nonce_end", ErrTypeValidation},
		{"bad op", func(r *ScanRequest) { r.TargetOp = "approx" }, "target_op", ErrTypeValidation},
		{"reversed between", func(r *ScanRequest) { r.TargetOp = "between"; r.TargetVal2 = 1 }, "target_val2", ErrTypeValidation},
		{"limit too large", func(r *ScanRequest) { r.Limit = maxScanLimit + 1 }, "limit", ErrTypeValidation},
		{"negative tolerance", func(r *ScanRequest) { r.Tolerance = -1 }, "tolerance", ErrTypeValidation},
		{"chain game", func(r *ScanRequest) { r.Game = "minesweeper" }, "", ErrTypeNotScannable},
	}

	server, _ := newTestServer(t)
	h := server.Routes()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(&req)

			w := do(t, h, http.MethodPost, "/api/v1/scan", req)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			e := decodeError(t, w)
			assert.Equal(t, tt.errType, e.Type)
			if tt.field != "" {
				assert.Equal(t, tt.field, e.Context["field"])
			}
		})
	}
}

func TestScanRangeTooLarge(t *testing.T) {
	server := NewServer(Options{
		Clock:   quartz.NewMock(t),
		Scanner: scan.NewScanner(scan.WithMaxRange(100)),
	})

	w := do(t, server.Routes(), http.MethodPost, "/api/v1/scan", ScanRequest{
		Game:       "coinflip",
		Seeds:      games.Seeds{Server: "server", Client: "client"},
		NonceStart: 1,
		NonceEnd:   1000,
		TargetOp:   "ge",
		TargetVal:  5,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrTypeValidation, decodeError(t, w).Type)
}

func TestSeedHashEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	h := server.Routes()

	w := do(t, h, http.MethodPost, "/api/v1/seed/hash", SeedHashRequest{ServerSeed: "server"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp SeedHashResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, testCommit, resp.Hash)

	w = do(t, h, http.MethodPost, "/api/v1/seed/hash", SeedHashRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChainEndpoint(t *testing.T) {
	server := NewServer(Options{Clock: quartz.NewMock(t), HistoryPage: 5})
	h := server.Routes()

	w := do(t, h, http.MethodPost, "/api/v1/chain", ChainRequest{Hash: testCommit})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var first ChainResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&first))
	require.Len(t, first.Rounds, 5)
	bombs := make([]int, len(first.Rounds))
	for i, r := range first.Rounds {
		bombs[i] = r.Bomb
	}
	assert.Equal(t, []int{0, 1, 3, 2, 3}, bombs)
	assert.Equal(t, testCommit, first.Rounds[0].Hash)

	w = do(t, h, http.MethodPost, "/api/v1/chain", ChainRequest{Hash: testCommit, Cursor: first.NextCursor, Count: 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var second ChainResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&second))
	require.Len(t, second.Rounds, 2)
	assert.Equal(t, first.NextCursor, second.Rounds[0].Hash)

	w = do(t, h, http.MethodPost, "/api/v1/chain", ChainRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/chain", ChainRequest{Hash: "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrTypeInvalidHash, decodeError(t, w).Type)
}

func TestCORSPreflight(t *testing.T) {
	server, _ := newTestServer(t)

	w := do(t, server.Routes(), http.MethodOptions, "/api/v1/verify", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryHandler(t *testing.T) {
	server, _ := newTestServer(t)
	h := server.errorHandler.RecoveryHandler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := do(t, h, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, ErrTypeInternal, e.Type)
	assert.False(t, strings.Contains(e.Message, "boom"))
}

func TestClassifyError(t *testing.T) {
	status, typ := classifyError(context.DeadlineExceeded)
	assert.Equal(t, http.StatusRequestTimeout, status)
	assert.Equal(t, ErrTypeTimeout, typ)

	status, typ = classifyError(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, ErrTypeInternal, typ)
}

func TestSanitizeParams(t *testing.T) {
	out := sanitizeParams(map[string]any{"server_seed": "secret", "ServerSeed": "x", "difficulty": "EASY"})
	assert.Equal(t, "[redacted]", out["server_seed"])
	assert.Equal(t, "[redacted]", out["ServerSeed"])
	assert.Equal(t, "EASY", out["difficulty"])
}

func TestStartShutdown(t *testing.T) {
	server := NewServer(Options{})

	addr, err := server.Start("127.0.0.1:0")
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr.String() + "/health/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))
}
