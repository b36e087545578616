package solitaire

import (
	"errors"
	"fmt"
)

// Rejection reasons reported by ValidateMove.
const (
	ReasonKingOnEmptyPile = "Only King can be put on Empty pile"
	ReasonAceOnEmptyStack = "Only Ace can be put on Empty Stacks"
	ReasonOneCardPerStack = "Only One Card can be put"
	ReasonInvalidSuit     = "Invalid Suit"
	ReasonInvalidValue    = "Invalid Value"
)

// InvalidMoveError is returned when a move breaks a Klondike placement rule.
type InvalidMoveError struct {
	Reason string
}

func (e *InvalidMoveError) Error() string { return e.Reason }

func invalidMove(reason string) error { return &InvalidMoveError{Reason: reason} }

// IsInvalidMove reports whether err is a rule rejection and returns its reason.
func IsInvalidMove(err error) (string, bool) {
	var im *InvalidMoveError
	if errors.As(err, &im) {
		return im.Reason, true
	}
	return "", false
}

// ErrMalformedMove marks moves that do not describe cards actually available at the source.
var ErrMalformedMove = errors.New("malformed move")

// Move relocates Cards, the top run of Src, onto Dst.
type Move struct {
	Cards []Card `json:"cards"`
	Src   Zone   `json:"src"`
	Dst   Zone   `json:"dst"`
}

func oppositeColors(a, b Suit) bool { return a.Color() != b.Color() }

// succeeds reports whether next ranks exactly one above prev. There is no wrap from king to ace.
func succeeds(next, prev Value) bool { return next.Valid() && prev.Valid() && next == prev+1 }

// ValidateMove checks m against the placement rules of its destination and
// returns the state after the move. st is never modified; on error the caller's
// state stays as it was.
//
// Only the destination's top card and the first moved card are inspected.
func ValidateMove(m Move, st State) (State, error) {
	if len(m.Cards) == 0 {
		return st, fmt.Errorf("%w: no cards", ErrMalformedMove)
	}
	if !m.Src.Valid() || !m.Dst.Valid() {
		return st, fmt.Errorf("%w: unknown zone", ErrMalformedMove)
	}
	moved := m.Cards[0]

	switch {
	case m.Dst.IsPile():
		top, ok := st.Top(m.Dst)
		if !ok {
			if moved.Value != King {
				return st, invalidMove(ReasonKingOnEmptyPile)
			}
		} else if !oppositeColors(top.Suit, moved.Suit) {
			return st, invalidMove(ReasonInvalidSuit)
		} else if !succeeds(top.Value, moved.Value) {
			return st, invalidMove(ReasonInvalidValue)
		}
	case m.Dst.IsStack():
		top, ok := st.Top(m.Dst)
		if !ok {
			if moved.Value != Ace {
				return st, invalidMove(ReasonAceOnEmptyStack)
			}
		} else if len(m.Cards) != 1 {
			return st, invalidMove(ReasonOneCardPerStack)
		} else if moved.Suit != st.Cards(m.Dst)[0].Suit {
			return st, invalidMove(ReasonInvalidSuit)
		} else if !succeeds(moved.Value, top.Value) {
			return st, invalidMove(ReasonInvalidValue)
		}
	}

	return commit(m, st), nil
}

func commit(m Move, st State) State {
	next := st.Clone()

	src := next.zones[m.Src]
	keep := len(src) - len(m.Cards)
	if keep < 0 {
		keep = 0
	}
	src = src[:keep]
	if m.Src != Draw && len(src) > 0 {
		src[len(src)-1].Up = true
	}
	next.zones[m.Src] = src

	up := m.Dst != Draw
	for _, c := range m.Cards {
		next.zones[m.Dst] = append(next.zones[m.Dst], Card{Suit: c.Suit, Value: c.Value, Up: up})
	}
	return next
}

// CheckSource rejects moves whose cards are not the movable top of Src.
// drawCount caps how many cards one draw from the stock may take.
func CheckSource(m Move, st State, drawCount int) error {
	if !m.Src.Valid() || !m.Dst.Valid() {
		return fmt.Errorf("%w: unknown zone", ErrMalformedMove)
	}
	if m.Src == m.Dst {
		return fmt.Errorf("%w: source and destination are the same", ErrMalformedMove)
	}
	n := len(m.Cards)
	if n == 0 {
		return fmt.Errorf("%w: no cards", ErrMalformedMove)
	}
	src := st.Cards(m.Src)
	if n > len(src) {
		return fmt.Errorf("%w: %s holds %d cards", ErrMalformedMove, m.Src, len(src))
	}
	run := src[len(src)-n:]
	for i, c := range m.Cards {
		if !c.Same(run[i]) {
			return fmt.Errorf("%w: %s is not on top of %s", ErrMalformedMove, c, m.Src)
		}
		if m.Src != Draw && !run[i].Up {
			return fmt.Errorf("%w: %s is face down", ErrMalformedMove, run[i])
		}
	}

	if drawCount <= 0 {
		drawCount = 1
	}
	switch {
	case m.Src == Draw:
		if m.Dst != Discard {
			return fmt.Errorf("%w: stock cards can only be drawn to discard", ErrMalformedMove)
		}
		if n > drawCount {
			return fmt.Errorf("%w: at most %d cards per draw", ErrMalformedMove, drawCount)
		}
	case m.Dst == Draw:
		if m.Src != Discard || n != len(src) || st.Len(Draw) != 0 {
			return fmt.Errorf("%w: only the whole discard can return to an empty stock", ErrMalformedMove)
		}
	case m.Dst == Discard:
		return fmt.Errorf("%w: only stock cards can be discarded", ErrMalformedMove)
	case (m.Src.IsStack() || m.Src == Discard) && n != 1:
		return fmt.Errorf("%w: one card at a time from %s", ErrMalformedMove, m.Src)
	}
	return nil
}
