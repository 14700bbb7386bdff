package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/pf-verify-go/internal/buildinfo"
	"github.com/MJE43/pf-verify-go/internal/engine"
	"github.com/MJE43/pf-verify-go/internal/games"
)

const maxBodyBytes = 1 << 20

// decode reads a JSON body into v, writing a validation error on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		s.errorHandler.HandleValidationError(w, r, "body", "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// rejectInvalid writes err as a validation error when it is one.
func (s *Server) rejectInvalid(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return false
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		s.errorHandler.HandleValidationError(w, r, verr.Field, verr.Message)
		return true
	}
	s.errorHandler.HandleError(w, r, err, nil)
	return true
}

// handleVerify recomputes one round. ?rtp= overrides the rtp parameter.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !s.decode(w, r, &req) {
		return
	}
	if s.rejectInvalid(w, r, ValidateVerifyRequest(&req)) {
		return
	}
	rtp, override, err := parseRTP(r.URL.Query().Get("rtp"))
	if s.rejectInvalid(w, r, err) {
		return
	}

	params := withRTP(req.Params, rtp, override, s.defaultRTP)
	v, err := games.Derive(req.Game, req.Seeds, req.Nonce, params)
	if err != nil {
		s.errorHandler.HandleError(w, r, err, map[string]any{
			"game":  req.Game,
			"nonce": req.Nonce,
		})
		return
	}

	s.securityLogger.LogVerifyOperation(middleware.GetReqID(r.Context()), req, v.Result)

	s.writeJSON(w, http.StatusOK, VerifyResponse{
		Game:           v.Game,
		Nonce:          req.Nonce,
		CommitmentHash: v.CommitmentHash,
		GameResult:     v.Result,
		EngineVersion:  buildinfo.Version,
	})
}

// handleScan runs a nonce-range scan bounded by the request context.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if !s.decode(w, r, &req) {
		return
	}
	if s.rejectInvalid(w, r, ValidateScanRequest(&req)) {
		return
	}

	requestID := middleware.GetReqID(r.Context())
	s.securityLogger.LogScanOperation(requestID, req)

	params := withRTP(req.Params, 0, false, s.defaultRTP)
	result, err := s.scanner.Scan(r.Context(), convertToScanRequest(&req, params))
	if err != nil {
		s.errorHandler.HandleError(w, r, err, map[string]any{
			"game":        req.Game,
			"nonce_start": req.NonceStart,
			"nonce_end":   req.NonceEnd,
		})
		return
	}

	s.logger.Info("scan_completed",
		"request_id", requestID,
		"run_id", result.RunID,
		"game", req.Game,
		"hits_found", result.Summary.HitsFound,
		"total_evaluated", result.Summary.TotalEvaluated,
		"timed_out", result.Summary.TimedOut,
	)

	s.writeJSON(w, http.StatusOK, ScanResponse{
		RunID:         result.RunID,
		Hits:          result.Hits,
		Summary:       result.Summary,
		EngineVersion: buildinfo.Version,
		Echo:          req,
	})
}

// handleListGames returns every registered game
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, GamesResponse{
		Games:         games.ListGames(),
		EngineVersion: buildinfo.Version,
	})
}

// handleSeedHash returns the SHA-256 commitment of a server seed
func (s *Server) handleSeedHash(w http.ResponseWriter, r *http.Request) {
	var req SeedHashRequest
	if !s.decode(w, r, &req) {
		return
	}
	if s.rejectInvalid(w, r, ValidateSeedHashRequest(&req)) {
		return
	}

	hash := engine.CommitmentHash(req.ServerSeed)
	s.securityLogger.LogSeedHashOperation(middleware.GetReqID(r.Context()), hash)

	s.writeJSON(w, http.StatusOK, SeedHashResponse{
		Hash:          hash,
		EngineVersion: buildinfo.Version,
	})
}

// handleChain returns one page of minesweeper rounds walking back through
// the hash chain. Pass next_cursor back as cursor for the following page.
func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	var req ChainRequest
	if !s.decode(w, r, &req) {
		return
	}
	if s.rejectInvalid(w, r, ValidateChainRequest(&req)) {
		return
	}

	start := req.Hash
	if req.Cursor != "" {
		start = req.Cursor
	}
	count := req.Count
	if count == 0 {
		count = s.historyPage
	}

	rounds, next, err := games.MinesweeperHistory(start, count)
	if err != nil {
		s.errorHandler.HandleError(w, r, err, map[string]any{"count": count})
		return
	}

	s.securityLogger.LogChainOperation(middleware.GetReqID(r.Context()), start, next, count)

	s.writeJSON(w, http.StatusOK, ChainResponse{
		Rounds:        rounds,
		NextCursor:    next,
		EngineVersion: buildinfo.Version,
	})
}
