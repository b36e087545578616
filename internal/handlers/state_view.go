package handlers

import (
	"klondike-go/internal/models"
)

// gameView is the client representation of a game: its summary fields with
// every zone of the layout flattened alongside. When history is non-nil it
// replaces the move counter under "moves".
func gameView(g *models.Game, history []models.GameMove) map[string]any {
	view := map[string]any{
		"id":              g.ID,
		"game":            g.Game,
		"color":           g.Color,
		"owner":           g.Owner,
		"active":          g.Active,
		"won":             g.Won,
		"score":           g.Score,
		"moves":           g.Moves,
		"winner":          g.Winner,
		"start":           g.Start,
		"drawCount":       g.DrawCount,
		"cards_remaining": g.State.CardsRemaining(),
	}
	if g.FinishedAt != nil {
		view["finished_at"] = *g.FinishedAt
	}
	for zone, cards := range g.State.Fields() {
		view[zone] = cards
	}
	if history != nil {
		view["moves"] = history
	}
	return view
}
