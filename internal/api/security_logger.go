package api

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/MJE43/pf-verify-go/internal/games"
	"github.com/MJE43/pf-verify-go/internal/logging"
)

// SecurityLogger writes audit events. Seeds never appear in its output,
// only their fingerprints.
type SecurityLogger struct {
	logger *log.Logger
}

// NewSecurityLogger creates a security logger on top of logger.
func NewSecurityLogger(logger *log.Logger) *SecurityLogger {
	return &SecurityLogger{logger: logger.WithPrefix("security")}
}

// LogVerifyOperation records one verified round.
func (sl *SecurityLogger) LogVerifyOperation(requestID string, req VerifyRequest, result games.GameResult) {
	sl.logger.Info("verify_operation",
		"request_id", requestID,
		"game", req.Game,
		"server_hash", logging.SeedFingerprint(req.Seeds.Server),
		"client_hash", logging.SeedFingerprint(req.Seeds.Client),
		"nonce", req.Nonce,
		"params", sanitizeParams(req.Params),
		"metric", result.Metric,
		"metric_label", result.MetricLabel,
	)
}

// LogScanOperation records the parameters of a scan.
func (sl *SecurityLogger) LogScanOperation(requestID string, req ScanRequest) {
	sl.logger.Info("scan_operation",
		"request_id", requestID,
		"game", req.Game,
		"server_hash", logging.SeedFingerprint(req.Seeds.Server),
		"client_hash", logging.SeedFingerprint(req.Seeds.Client),
		"nonce_start", req.NonceStart,
		"nonce_end", req.NonceEnd,
		"target_op", req.TargetOp,
		"target_val", req.TargetVal,
		"limit", req.Limit,
		"timeout_ms", req.TimeoutMs,
		"params", sanitizeParams(req.Params),
	)
}

// LogSeedHashOperation logs the commitment produced for a seed.
func (sl *SecurityLogger) LogSeedHashOperation(requestID, resultHash string) {
	sl.logger.Info("seed_hash_operation",
		"request_id", requestID,
		"result_hash", resultHash,
	)
}

// LogChainOperation records a page of the minesweeper hash chain. Chain
// hashes are already public so they are logged as is.
func (sl *SecurityLogger) LogChainOperation(requestID, start, next string, count int) {
	sl.logger.Info("chain_operation",
		"request_id", requestID,
		"start", start,
		"next_cursor", next,
		"count", count,
	)
}

// LogSecurityEvent logs failed validations and other suspicious input.
func (sl *SecurityLogger) LogSecurityEvent(requestID, eventType, description string, context map[string]any, remoteAddr string) {
	sl.logger.Warn("security_event",
		"request_id", requestID,
		"type", eventType,
		"description", description,
		"context", sanitizeParams(context),
		"remote_addr", remoteAddr,
	)
}

// sanitizeParams drops anything that looks like a seed.
func sanitizeParams(params map[string]any) map[string]any {
	if len(params) == 0 {
		return nil
	}
	clean := make(map[string]any, len(params))
	for k, v := range params {
		if strings.Contains(strings.ToLower(k), "seed") {
			clean[k] = "[redacted]"
			continue
		}
		clean[k] = v
	}
	return clean
}
