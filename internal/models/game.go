package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"klondike-go/internal/solitaire"
)

const DefaultGameKind = "klondike"

type Game struct {
	ID         string          `json:"id"`
	OwnerID    int64           `json:"owner_id"`
	Owner      string          `json:"owner"`
	Game       string          `json:"game"`
	Color      string          `json:"color"`
	DrawCount  int             `json:"drawCount"`
	Active     bool            `json:"active"`
	Won        bool            `json:"won"`
	Score      int             `json:"score"`
	Moves      int             `json:"moves"`
	Winner     string          `json:"winner"`
	State      solitaire.State `json:"-"`
	Version    int64           `json:"-"`
	Start      time.Time       `json:"start"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

// GameProfile is the summary of a game shown on a player's profile.
type GameProfile struct {
	ID        string    `json:"id"`
	Game      string    `json:"game"`
	Active    bool      `json:"active"`
	Score     int       `json:"score"`
	Won       bool      `json:"won"`
	Start     time.Time `json:"start"`
	Moves     int       `json:"moves"`
	DrawCount int       `json:"drawCount"`
	Winner    string    `json:"winner"`
}

func (g *Game) Profile() GameProfile {
	return GameProfile{
		ID:        g.ID,
		Game:      g.Game,
		Active:    g.Active,
		Score:     g.Score,
		Won:       g.Won,
		Start:     g.Start,
		Moves:     g.Moves,
		DrawCount: g.DrawCount,
		Winner:    g.Winner,
	}
}

type NewGame struct {
	OwnerID   int64
	Game      string
	Color     string
	DrawCount int
	State     solitaire.State
	Start     time.Time
}

func CreateGame(ctx context.Context, db *sql.DB, ng NewGame) (*Game, error) {
	stateJSON, err := json.Marshal(ng.State)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	if ng.Game == "" {
		ng.Game = DefaultGameKind
	}
	if ng.DrawCount <= 0 {
		ng.DrawCount = 1
	}
	id := uuid.NewString()
	_, err = db.ExecContext(ctx,
		`INSERT INTO games(id, owner_id, game, color, draw_count, active, state_json, version, start)
		 VALUES (?, ?, ?, ?, ?, 1, ?, 1, ?)`,
		id, ng.OwnerID, ng.Game, ng.Color, ng.DrawCount, string(stateJSON), ng.Start.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert game: %w", err)
	}
	return GetGameByID(ctx, db, id)
}

const gameColumns = `g.id, g.owner_id, u.username, g.game, g.color, g.draw_count, g.active, g.won, g.score, g.moves,
	g.winner, g.state_json, g.version, g.start, g.finished_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*Game, error) {
	var (
		g         Game
		active    int
		won       int
		stateJSON sql.NullString
		finished  sql.NullTime
	)
	if err := row.Scan(&g.ID, &g.OwnerID, &g.Owner, &g.Game, &g.Color, &g.DrawCount, &active, &won, &g.Score,
		&g.Moves, &g.Winner, &stateJSON, &g.Version, &g.Start, &finished); err != nil {
		return nil, err
	}
	g.Active = active != 0
	g.Won = won != 0
	if finished.Valid {
		v := finished.Time
		g.FinishedAt = &v
	}
	if !stateJSON.Valid || strings.TrimSpace(stateJSON.String) == "" {
		return nil, ErrGameStateMissing
	}
	if err := json.Unmarshal([]byte(stateJSON.String), &g.State); err != nil {
		return nil, fmt.Errorf("decode state for game %s: %w", g.ID, err)
	}
	return &g, nil
}

// GetGameByID loads a game with its current state. q may be a *sql.DB or a *sql.Tx.
func GetGameByID(ctx context.Context, q queryer, id string) (*Game, error) {
	g, err := scanGame(q.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games g JOIN users u ON u.id = g.owner_id WHERE g.id = ?`,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ListGamesByOwner returns a player's games, newest first.
func ListGamesByOwner(ctx context.Context, db *sql.DB, ownerID int64) ([]Game, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games g JOIN users u ON u.id = g.owner_id
		 WHERE g.owner_id = ? ORDER BY g.start DESC, g.rowid DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

// GameUpdate carries the fields a move changes. Version is the version the
// caller read; the write only lands if the row still has it.
type GameUpdate struct {
	ID         string
	Version    int64
	State      solitaire.State
	Score      int
	Moves      int
	Active     bool
	Won        bool
	Winner     string
	FinishedAt *time.Time
}

// UpdateGameStateTx writes u and bumps the version. It returns the new version,
// or ErrGameStateConflict when another writer got there first.
func UpdateGameStateTx(ctx context.Context, tx *sql.Tx, u GameUpdate) (int64, error) {
	stateJSON, err := json.Marshal(u.State)
	if err != nil {
		return 0, fmt.Errorf("marshal state: %w", err)
	}
	var finished any
	if u.FinishedAt != nil {
		finished = u.FinishedAt.UTC()
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE games
		 SET state_json = ?, score = ?, moves = ?, active = ?, won = ?, winner = ?, finished_at = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		string(stateJSON), u.Score, u.Moves, boolToInt(u.Active), boolToInt(u.Won), u.Winner, finished,
		u.ID, u.Version,
	)
	if err != nil {
		return 0, fmt.Errorf("update game %s: %w", u.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrGameStateConflict
	}
	return u.Version + 1, nil
}
