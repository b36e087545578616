package solitaire

// Standard Klondike scoring.
const (
	ScoreWasteToTableau      = 5
	ScoreWasteToFoundation   = 10
	ScoreTableauToFoundation = 10
	ScoreFoundationToTableau = -15
	ScoreTurnOver            = 5
	ScoreRecycleWaste        = -100
)

// ScoreMove returns the score change of applying m to before.
// Recycling the waste is only penalised in draw-one games.
func ScoreMove(m Move, before State, drawCount int) int {
	delta := 0
	switch {
	case m.Src == Discard && m.Dst.IsPile():
		delta += ScoreWasteToTableau
	case m.Src == Discard && m.Dst.IsStack():
		delta += ScoreWasteToFoundation
	case m.Src.IsPile() && m.Dst.IsStack():
		delta += ScoreTableauToFoundation
	case m.Src.IsStack() && m.Dst.IsPile():
		delta += ScoreFoundationToTableau
	case m.Src == Discard && m.Dst == Draw:
		if drawCount <= 1 {
			delta += ScoreRecycleWaste
		}
	}

	if m.Src.IsPile() {
		src := before.Cards(m.Src)
		if i := len(src) - len(m.Cards) - 1; i >= 0 && !src[i].Up {
			delta += ScoreTurnOver
		}
	}
	return delta
}

// ApplyScore adds delta to score, never going below zero.
func ApplyScore(score, delta int) int {
	score += delta
	if score < 0 {
		return 0
	}
	return score
}
