package api

import (
	"github.com/MJE43/pf-verify-go/internal/games"
	"github.com/MJE43/pf-verify-go/internal/scan"
)

// EngineError represents a structured error response with context
type EngineError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e EngineError) Error() string {
	return e.Message
}

// Error types with proper categorization
const (
	// Input validation errors
	ErrTypeInvalidSeed   = "invalid_seed"
	ErrTypeInvalidParams = "invalid_params"
	ErrTypeInvalidHash   = "invalid_hash"
	ErrTypeValidation    = "validation_error"

	// Game-related errors
	ErrTypeGameNotFound   = "game_not_found"
	ErrTypeGameEvaluation = "game_evaluation_error"
	ErrTypeNotScannable   = "game_not_scannable"

	// System errors
	ErrTypeTimeout  = "timeout"
	ErrTypeInternal = "internal_error"
)

// ErrorCategory represents error categories for monitoring
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryGame       ErrorCategory = "game"
	CategorySystem     ErrorCategory = "system"
	CategoryTimeout    ErrorCategory = "timeout"
)

// GetErrorCategory returns the category for an error type
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeInvalidSeed, ErrTypeInvalidParams, ErrTypeInvalidHash, ErrTypeValidation:
		return CategoryValidation
	case ErrTypeGameNotFound, ErrTypeGameEvaluation, ErrTypeNotScannable:
		return CategoryGame
	case ErrTypeTimeout:
		return CategoryTimeout
	default:
		return CategorySystem
	}
}

// ScanRequest is the body of POST /api/v1/scan.
type ScanRequest struct {
	Game       string         `json:"game"`
	Seeds      games.Seeds    `json:"seeds"`
	NonceStart uint64         `json:"nonce_start"`
	NonceEnd   uint64         `json:"nonce_end"`
	Params     map[string]any `json:"params"`
	TargetOp   string         `json:"target_op"` // "ge", "le", "eq", "gt", "lt", "between", "outside"
	TargetVal  float64        `json:"target_val"`
	TargetVal2 float64        `json:"target_val2,omitempty"` // for "between" and "outside"
	Tolerance  float64        `json:"tolerance"`
	Limit      int            `json:"limit,omitempty"`
	TimeoutMs  int            `json:"timeout_ms,omitempty"`
}

// ScanResponse represents the complete scan response
type ScanResponse struct {
	RunID         string       `json:"run_id"`
	Hits          []scan.Hit   `json:"hits"`
	Summary       scan.Summary `json:"summary"`
	EngineVersion string       `json:"engine_version"`
	Echo          ScanRequest  `json:"echo"`
}

// VerifyRequest is the body of POST /api/v1/verify. The nonce may be sent
// as a JSON string or number.
type VerifyRequest struct {
	Game   string         `json:"game"`
	Seeds  games.Seeds    `json:"seeds"`
	Nonce  games.Nonce    `json:"nonce"`
	Params map[string]any `json:"params,omitempty"`
}

// VerifyResponse carries the recomputed round and the server seed
// commitment to compare against the operator's published hash.
type VerifyResponse struct {
	Game           string           `json:"game"`
	Nonce          games.Nonce      `json:"nonce"`
	CommitmentHash string           `json:"commitment_hash"`
	GameResult     games.GameResult `json:"game_result"`
	EngineVersion  string           `json:"engine_version"`
}

// GamesResponse represents the games metadata response
type GamesResponse struct {
	Games         []games.GameSpec `json:"games"`
	EngineVersion string           `json:"engine_version"`
}

// SeedHashRequest represents a seed hashing request
type SeedHashRequest struct {
	ServerSeed string `json:"server_seed"`
}

// SeedHashResponse represents a seed hashing response
type SeedHashResponse struct {
	Hash          string `json:"hash"`
	EngineVersion string `json:"engine_version"`
}

// ChainRequest asks for a page of minesweeper rounds walking back from
// Hash, or from Cursor when continuing an earlier page.
type ChainRequest struct {
	Hash   string `json:"hash"`
	Cursor string `json:"cursor,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// ChainResponse is one page of the walk.
type ChainResponse struct {
	Rounds        []games.BombRound `json:"rounds"`
	NextCursor    string            `json:"next_cursor"`
	EngineVersion string            `json:"engine_version"`
}
