package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"klondike-go/internal/solitaire"
)

// GameMove is one accepted move together with the state it produced.
type GameMove struct {
	ID        int64            `json:"id"`
	GameID    string           `json:"game"`
	UserID    int64            `json:"user"`
	Username  string           `json:"username"`
	Cards     []solitaire.Card `json:"cards"`
	Src       solitaire.Zone   `json:"src"`
	Dst       solitaire.Zone   `json:"dst"`
	State     solitaire.State  `json:"state"`
	CreatedAt time.Time        `json:"start"`
}

func InsertMoveTx(ctx context.Context, tx *sql.Tx, m GameMove) (int64, error) {
	cardsJSON, err := json.Marshal(m.Cards)
	if err != nil {
		return 0, fmt.Errorf("marshal cards: %w", err)
	}
	stateJSON, err := json.Marshal(m.State)
	if err != nil {
		return 0, fmt.Errorf("marshal state: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO moves(game_id, user_id, username, cards_json, src, dst, state_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.GameID, m.UserID, m.Username, string(cardsJSON), m.Src.String(), m.Dst.String(), string(stateJSON),
		m.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert move: %w", err)
	}
	return res.LastInsertId()
}

// ListMovesByGame returns the move history of a game, oldest first.
func ListMovesByGame(ctx context.Context, db *sql.DB, gameID string) ([]GameMove, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, game_id, user_id, username, cards_json, src, dst, state_json, created_at
		 FROM moves WHERE game_id = ? ORDER BY id ASC`,
		gameID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameMove{}
	for rows.Next() {
		var (
			m         GameMove
			cardsJSON string
			src, dst  string
			stateJSON string
		)
		if err := rows.Scan(&m.ID, &m.GameID, &m.UserID, &m.Username, &cardsJSON, &src, &dst, &stateJSON, &m.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(cardsJSON), &m.Cards); err != nil {
			return nil, fmt.Errorf("decode move %d cards: %w", m.ID, err)
		}
		if err := json.Unmarshal([]byte(stateJSON), &m.State); err != nil {
			return nil, fmt.Errorf("decode move %d state: %w", m.ID, err)
		}
		if m.Src, err = solitaire.ParseZone(src); err != nil {
			return nil, err
		}
		if m.Dst, err = solitaire.ParseZone(dst); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
