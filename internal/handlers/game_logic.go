package handlers

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"klondike-go/internal/models"
	"klondike-go/internal/solitaire"
	"klondike-go/internal/tracing"
	ws "klondike-go/pkg/websocket"
)

// CreateGame deals a new game for ownerID and stores it.
func CreateGame(ctx context.Context, d *Deps, ownerID int64, kind, color string, drawCount int) (*models.Game, error) {
	ctx, span := tracing.StartSpan(ctx, "game.create")
	defer span.End()

	g, err := models.CreateGame(ctx, d.DB, models.NewGame{
		OwnerID:   ownerID,
		Game:      kind,
		Color:     color,
		DrawCount: drawCount,
		State:     d.Dealer.Deal(),
		Start:     d.now(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create game")
		return nil, err
	}
	span.SetAttributes(attribute.String("game.id", g.ID))
	d.logger().Info("game created", "game_id", g.ID, "owner_id", ownerID, "draw_count", g.DrawCount)
	return g, nil
}

// ApplyMove runs m against the stored state of gameID on behalf of its owner
// and persists the result together with a history record. Rejected moves leave
// storage untouched.
func ApplyMove(ctx context.Context, d *Deps, gameID string, userID int64, username string, m solitaire.Move) (*models.Game, error) {
	ctx, span := tracing.StartSpan(ctx, "game.apply_move")
	defer span.End()
	span.SetAttributes(
		attribute.String("game.id", gameID),
		attribute.String("move.src", m.Src.String()),
		attribute.String("move.dst", m.Dst.String()),
		attribute.Int("move.cards", len(m.Cards)),
	)

	g, err := applyMoveLocked(ctx, d, gameID, userID, username, m)
	if err != nil {
		if reason, ok := solitaire.IsInvalidMove(err); ok {
			span.SetAttributes(attribute.String("move.rejected", reason))
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, "apply move")
		}
		return nil, err
	}

	d.broadcastGame(g)
	return g, nil
}

func applyMoveLocked(ctx context.Context, d *Deps, gameID string, userID int64, username string, m solitaire.Move) (*models.Game, error) {
	unlock := d.locks.lock(gameID)
	defer unlock()

	g, err := models.GetGameByID(ctx, d.DB, gameID)
	if err != nil {
		return nil, err
	}
	if g.OwnerID != userID {
		return nil, models.ErrNotGameOwner
	}
	if !g.Active {
		return nil, models.ErrGameCompleted
	}

	if err := solitaire.CheckSource(m, g.State, g.DrawCount); err != nil {
		return nil, err
	}
	next, err := solitaire.ValidateMove(m, g.State)
	if err != nil {
		return nil, err
	}

	now := d.now()
	upd := models.GameUpdate{
		ID:      g.ID,
		Version: g.Version,
		State:   next,
		Score:   solitaire.ApplyScore(g.Score, solitaire.ScoreMove(m, g.State, g.DrawCount)),
		Moves:   g.Moves + 1,
		Active:  true,
	}
	if next.Won() {
		upd.Active = false
		upd.Won = true
		upd.Winner = username
		upd.FinishedAt = &now
	}

	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	version, err := models.UpdateGameStateTx(ctx, tx, upd)
	if err != nil {
		return nil, err
	}
	if _, err := models.InsertMoveTx(ctx, tx, models.GameMove{
		GameID:    g.ID,
		UserID:    userID,
		Username:  username,
		Cards:     m.Cards,
		Src:       m.Src,
		Dst:       m.Dst,
		State:     next,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit move: %w", err)
	}

	g.State = next
	g.Version = version
	g.Score = upd.Score
	g.Moves = upd.Moves
	g.Active = upd.Active
	g.Won = upd.Won
	g.Winner = upd.Winner
	g.FinishedAt = upd.FinishedAt

	if g.Won {
		d.logger().Info("game won", "game_id", g.ID, "winner", username, "score", g.Score, "moves", g.Moves)
	}
	return g, nil
}

func (d *Deps) broadcastGame(g *models.Game) {
	hub, ok := d.hub()
	if !ok {
		return
	}
	hub.Broadcast(ws.GameRoom(g.ID), "game_update", gameView(g, nil))
}
