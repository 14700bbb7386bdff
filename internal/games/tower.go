package games

import (
	"strconv"

	"github.com/MJE43/pf-verify-go/internal/engine"
)

// TowerGame hides treasures in every row of a tower. Row r has its own
// hash HMAC-SHA256(client:nonce:r, server) whose leading rate chunks
// shuffle a canonical row of treasures followed by bombs.
type TowerGame struct{}

// Tile is the content of one tower cell.
type Tile string

const (
	Treasure Tile = "TREASURE"
	Bomb     Tile = "BOMB"
)

// TowerDifficulty is the board shape for a difficulty.
type TowerDifficulty struct {
	RowCount       int `json:"row_count"`
	ColumnCount    int `json:"column_count"`
	TreasuresCount int `json:"treasures_count"`
}

const towerDefaultDifficulty = "EASY"

var towerDifficulties = map[string]TowerDifficulty{
	"EASY":      {RowCount: 9, ColumnCount: 4, TreasuresCount: 3},
	"MEDIUM":    {RowCount: 9, ColumnCount: 3, TreasuresCount: 2},
	"HARD":      {RowCount: 9, ColumnCount: 2, TreasuresCount: 1},
	"EXTREME":   {RowCount: 6, ColumnCount: 3, TreasuresCount: 1},
	"NIGHTMARE": {RowCount: 6, ColumnCount: 4, TreasuresCount: 1},
}

// TowerRow is one resolved row and the hash it came from.
type TowerRow struct {
	Row         int    `json:"row"`
	Hash        string `json:"hash"`
	Permutation []int  `json:"permutation"`
	Tiles       []Tile `json:"tiles"`
}

type TowerDetails struct {
	Difficulty string     `json:"difficulty"`
	Column     int        `json:"column"`
	Rows       []TowerRow `json:"rows"`
	SafeRows   int        `json:"safe_rows"`
}

// Spec returns metadata about the Tower game.
func (g *TowerGame) Spec() GameSpec {
	return GameSpec{
		ID:          "tower",
		Name:        "Tower",
		MetricLabel: "safe_rows",
		Hash:        "hmac-sha256",
	}
}

// Evaluate builds the whole tower. The metric counts the rows a player
// clears by always picking params["column"] (default 0) before the first
// bomb.
func (g *TowerGame) Evaluate(seeds Seeds, nonce Nonce, params map[string]any) (GameResult, error) {
	difficulty, err := labelParam(params, "difficulty", towerDefaultDifficulty)
	if err != nil {
		return GameResult{}, err
	}
	cfg, ok := towerDifficulties[difficulty]
	if !ok {
		return GameResult{}, unsupported("unknown tower difficulty %q", difficulty)
	}

	column, err := intParam(params, "column", 0)
	if err != nil {
		return GameResult{}, err
	}
	if column < 0 || column >= cfg.ColumnCount {
		return GameResult{}, unsupported("tower column must be between 0 and %d, got %d", cfg.ColumnCount-1, column)
	}

	rows := make([]TowerRow, cfg.RowCount)
	for r := range rows {
		hash, err := engine.KeyedHash(engine.SHA256, seeds, nonce, strconv.Itoa(r))
		if err != nil {
			return GameResult{}, err
		}
		perm, tiles, err := TowerTiles(hash, cfg)
		if err != nil {
			return GameResult{}, err
		}
		rows[r] = TowerRow{Row: r, Hash: hash, Permutation: perm, Tiles: tiles}
	}

	safeRows := 0
	for _, row := range rows {
		if row.Tiles[column] != Treasure {
			break
		}
		safeRows++
	}

	return GameResult{
		Metric:      float64(safeRows),
		MetricLabel: "safe_rows",
		Hash:        rows[0].Hash,
		Details: TowerDetails{
			Difficulty: difficulty,
			Column:     column,
			Rows:       rows,
			SafeRows:   safeRows,
		},
	}, nil
}

// towerBaseRow is the canonical row: all treasures first, then bombs.
func towerBaseRow(cfg TowerDifficulty) []Tile {
	row := make([]Tile, cfg.ColumnCount)
	for i := range row {
		if i < cfg.TreasuresCount {
			row[i] = Treasure
		} else {
			row[i] = Bomb
		}
	}
	return row
}

// TowerTiles shuffles one canonical row with a row hash.
func TowerTiles(hash string, cfg TowerDifficulty) ([]int, []Tile, error) {
	if err := engine.ValidateHashLength(engine.SHA256, hash); err != nil {
		return nil, nil, err
	}

	perm, err := engine.PermuteHex(hash, cfg.ColumnCount)
	if err != nil {
		return nil, nil, err
	}

	base := towerBaseRow(cfg)
	tiles := make([]Tile, len(perm))
	for i, idx := range perm {
		tiles[i] = base[idx]
	}
	return perm, tiles, nil
}
