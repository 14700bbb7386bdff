package scan

import (
	"errors"

	"github.com/MJE43/pf-verify-go/internal/games"
)

var (
	ErrGameNotFound  = games.ErrGameNotFound
	ErrInvalidRange  = errors.New("invalid nonce range")
	ErrRangeTooLarge = errors.New("nonce range too large")
	ErrInvalidTarget = errors.New("invalid target")
	ErrNotScannable  = errors.New("game is not scannable by nonce")
)
