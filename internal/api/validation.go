package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MJE43/pf-verify-go/internal/games"
	"github.com/MJE43/pf-verify-go/internal/scan"
)

const (
	maxScanLimit   = 100_000
	maxScanTimeout = 300_000 // ms
	maxChainPage   = games.MaxHistoryPage
)

// ValidationError names the request field that failed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateVerifyRequest checks the fields every game needs. Seed rules are
// left to the game, since minesweeper reads a chain hash instead.
func ValidateVerifyRequest(req *VerifyRequest) error {
	if strings.TrimSpace(req.Game) == "" {
		return invalid("game", "game is required")
	}
	return nil
}

// ValidateScanRequest validates a scan request and returns the first problem
func ValidateScanRequest(req *ScanRequest) error {
	if strings.TrimSpace(req.Game) == "" {
		return invalid("game", "game is required")
	}
	if req.Seeds.Server == "" {
		return invalid("seeds.server", "server seed is required")
	}
	if req.Seeds.Client == "" {
		return invalid("seeds.client", "client seed is required")
	}
	if req.NonceEnd < req.NonceStart {
		return invalid("nonce_end", "nonce_end (%d) must be >= nonce_start (%d)", req.NonceEnd, req.NonceStart)
	}
	if req.TargetOp == "" {
		return invalid("target_op", "target_op is required")
	}
	if !scan.TargetOp(req.TargetOp).Valid() {
		return invalid("target_op", "target_op must be one of: eq, gt, ge, lt, le, between, outside")
	}
	if (req.TargetOp == string(scan.OpBetween) || req.TargetOp == string(scan.OpOutside)) && req.TargetVal > req.TargetVal2 {
		return invalid("target_val2", "target_val must be <= target_val2 for '%s'", req.TargetOp)
	}
	if req.Limit < 0 || req.Limit > maxScanLimit {
		return invalid("limit", "limit must be between 0 and %d", maxScanLimit)
	}
	if req.TimeoutMs < 0 || req.TimeoutMs > maxScanTimeout {
		return invalid("timeout_ms", "timeout_ms must be between 0 and %d", maxScanTimeout)
	}
	if req.Tolerance < 0 {
		return invalid("tolerance", "tolerance must be >= 0")
	}
	return nil
}

// ValidateSeedHashRequest validates a seed hash request
func ValidateSeedHashRequest(req *SeedHashRequest) error {
	if req.ServerSeed == "" {
		return invalid("server_seed", "server_seed is required")
	}
	return nil
}

// ValidateChainRequest validates a chain page request
func ValidateChainRequest(req *ChainRequest) error {
	if req.Hash == "" && req.Cursor == "" {
		return invalid("hash", "hash or cursor is required")
	}
	if req.Count < 0 || req.Count > maxChainPage {
		return invalid("count", "count must be between 1 and %d", maxChainPage)
	}
	return nil
}

// parseRTP reads the ?rtp= override. An empty value means no override.
// Any integer is passed through; games that only know some RTPs reject
// the rest themselves.
func parseRTP(raw string) (int, bool, error) {
	if raw == "" {
		return 0, false, nil
	}
	rtp, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false, invalid("rtp", "rtp must be an integer percentage")
	}
	return rtp, true, nil
}

// withRTP returns a copy of params carrying the rtp to use: the override
// when given, else the request's own value, else the server default.
func withRTP(params map[string]any, override int, hasOverride bool, def int) map[string]any {
	out := make(map[string]any, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	switch {
	case hasOverride:
		out["rtp"] = override
	case out["rtp"] == nil:
		out["rtp"] = def
	}
	return out
}

// convertToScanRequest converts API ScanRequest to internal scan.ScanRequest
func convertToScanRequest(apiReq *ScanRequest, params map[string]any) scan.ScanRequest {
	return scan.ScanRequest{
		Game:       apiReq.Game,
		Seeds:      apiReq.Seeds,
		NonceStart: apiReq.NonceStart,
		NonceEnd:   apiReq.NonceEnd,
		Params:     params,
		TargetOp:   scan.TargetOp(apiReq.TargetOp),
		TargetVal:  apiReq.TargetVal,
		TargetVal2: apiReq.TargetVal2,
		Tolerance:  apiReq.Tolerance,
		Limit:      apiReq.Limit,
		TimeoutMs:  apiReq.TimeoutMs,
	}
}
