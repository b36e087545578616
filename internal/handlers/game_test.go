package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"klondike-go/internal/models"
	"klondike-go/internal/solitaire"
)

func TestParseDrawCount(t *testing.T) {
	cases := map[string]int{
		``:         1,
		`null`:     1,
		`3`:        3,
		`1`:        1,
		`7`:        1,
		`"Draw 3"`: 3,
		`"draw 1"`: 1,
		`"3"`:      3,
		`"Draw 5"`: 1,
		`{}`:       1,
	}
	for raw, want := range cases {
		assert.Equal(t, want, parseDrawCount(json.RawMessage(raw)), raw)
	}
}

func TestCreateGame(t *testing.T) {
	e := newTestEnv(t)
	token := e.signup("alice")

	w := e.do(http.MethodPost, "/v1/game", gin.H{"game": "klondike", "color": "red"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodPost, "/v1/game", gin.H{"game": "klondike"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/v1/game", gin.H{"game": "spider", "color": "red"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := e.newGame(token, "Draw 3")
	g := e.getGame(id)
	assert.Equal(t, id, g.ID)
	assert.Equal(t, "alice", g.Owner)
	assert.True(t, g.Active)
	assert.False(t, g.Won)
	assert.Zero(t, g.Score)
	assert.Zero(t, moveCount(t, g))
	assert.Equal(t, 3, g.DrawCount)
	assert.Equal(t, solitaire.DeckSize, g.CardsRemaining)
	assert.True(t, e.clock.Now().Equal(g.Start))

	assert.Equal(t, solitaire.DeckSize, g.State.Total())
	assert.Equal(t, solitaire.DrawCards, g.State.Len(solitaire.Draw))
	for i, pile := range solitaire.Piles {
		assert.Equal(t, i+1, g.State.Len(pile))
	}
}

func TestGetGame_Unknown(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodGet, "/v1/game/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "unknown game: missing", errorMessage(t, w))

	w = e.do(http.MethodGet, "/v1/game/missing/moves", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMove_DrawAndHistory(t *testing.T) {
	e := newTestEnv(t)
	token := e.signup("alice")
	id := e.newGame(token, nil)
	before := e.getGame(id)
	m := drawMove(before.State)

	w := e.do(http.MethodPut, "/v1/game/"+id, m, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	after := decodeGame(t, w.Body.Bytes())
	assert.Equal(t, 1, moveCount(t, after))
	assert.Equal(t, solitaire.DrawCards-1, after.State.Len(solitaire.Draw))
	top, ok := after.State.Top(solitaire.Discard)
	require.True(t, ok)
	assert.True(t, top.Same(m.Cards[0]))
	assert.True(t, top.Up)

	// The same card is no longer on the stock.
	w = e.do(http.MethodPut, "/v1/game/"+id, m, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w), "malformed move")

	w = e.do(http.MethodGet, "/v1/game/"+id+"?moves", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	withHistory := decodeGame(t, w.Body.Bytes())
	var history []models.GameMove
	require.NoError(t, json.Unmarshal(withHistory.Moves, &history))
	require.Len(t, history, 1)
	assert.Equal(t, "alice", history[0].Username)
	assert.Equal(t, solitaire.Draw, history[0].Src)
	assert.Equal(t, solitaire.Discard, history[0].Dst)
	assert.Equal(t, after.State, history[0].State)

	w = e.do(http.MethodGet, "/v1/game/"+id+"/moves", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Moves []models.GameMove `json:"moves"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Moves, 1)
}

func TestMove_RuleViolationLeavesGameUntouched(t *testing.T) {
	e := newTestEnv(t)
	token := e.signup("alice")
	id := e.newGame(token, nil)
	before := e.getGame(id)

	var m solitaire.Move
	for _, pile := range solitaire.Piles {
		top, _ := before.State.Top(pile)
		if top.Value != solitaire.Ace {
			m = solitaire.Move{Cards: []solitaire.Card{top}, Src: pile, Dst: solitaire.Stack1}
			break
		}
	}
	require.NotEmpty(t, m.Cards)

	w := e.do(http.MethodPut, "/v1/game/"+id, m, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, solitaire.ReasonAceOnEmptyStack, errorMessage(t, w))

	after := e.getGame(id)
	assert.Equal(t, before.State, after.State)
	assert.Zero(t, moveCount(t, after))

	w = e.do(http.MethodPut, "/v1/game/"+id, gin.H{"cards": []any{}, "src": "pile9", "dst": "stack1"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMove_Ownership(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signup("alice")
	bob := e.signup("bob")
	id := e.newGame(alice, nil)
	m := drawMove(e.getGame(id).State)

	w := e.do(http.MethodPut, "/v1/game/"+id, m, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodPut, "/v1/game/"+id, m, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Unauthorized User", errorMessage(t, w))

	w = e.do(http.MethodPut, "/v1/game/nope", m, alice)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Unknown Game", errorMessage(t, w))
}

// setState overwrites the stored layout without bumping the version.
func (e *testEnv) setState(id string, st solitaire.State) {
	e.t.Helper()
	b, err := json.Marshal(st)
	require.NoError(e.t, err)
	_, err = e.deps.DB.ExecContext(context.Background(), `UPDATE games SET state_json = ? WHERE id = ?`, string(b), id)
	require.NoError(e.t, err)
}

func nearlyWon() solitaire.State {
	st := solitaire.NewState()
	for i, suit := range solitaire.Suits {
		for _, v := range solitaire.Values {
			if suit == solitaire.Spades && v == solitaire.King {
				continue
			}
			st.Put(solitaire.Stacks[i], solitaire.Card{Suit: suit, Value: v, Up: true})
		}
	}
	st.Put(solitaire.Pile1, solitaire.Card{Suit: solitaire.Spades, Value: solitaire.King, Up: true})
	return st
}

func TestMove_WinCompletesGame(t *testing.T) {
	e := newTestEnv(t)
	token := e.signup("alice")
	id := e.newGame(token, nil)
	e.setState(id, nearlyWon())

	king := solitaire.Card{Suit: solitaire.Spades, Value: solitaire.King, Up: true}
	m := solitaire.Move{Cards: []solitaire.Card{king}, Src: solitaire.Pile1, Dst: solitaire.Stack1}
	w := e.do(http.MethodPut, "/v1/game/"+id, m, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	g := decodeGame(t, w.Body.Bytes())
	assert.True(t, g.Won)
	assert.False(t, g.Active)
	assert.Equal(t, "alice", g.Winner)
	assert.Equal(t, solitaire.ScoreTableauToFoundation, g.Score)
	assert.Zero(t, g.CardsRemaining)

	w = e.do(http.MethodPut, "/v1/game/"+id, m, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Game Completed", errorMessage(t, w))

	w = e.do(http.MethodGet, "/v1/user/alice", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		Games []models.GameProfile `json:"games"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	require.Len(t, profile.Games, 1)
	assert.True(t, profile.Games[0].Won)
	assert.Equal(t, "alice", profile.Games[0].Winner)
}

func TestMove_ConcurrentRequestsApplyOnce(t *testing.T) {
	e := newTestEnv(t)
	token := e.signup("alice")
	id := e.newGame(token, nil)
	m := drawMove(e.getGame(id).State)

	var ok, rejected atomic.Int32
	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			w := e.do(http.MethodPut, "/v1/game/"+id, m, token)
			switch w.Code {
			case http.StatusOK:
				ok.Add(1)
			case http.StatusBadRequest:
				rejected.Add(1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(7), rejected.Load())
	assert.Equal(t, 1, moveCount(t, e.getGame(id)))
	assert.Zero(t, e.deps.locks.held())
}

func TestGameLocks_Released(t *testing.T) {
	var l gameLocks
	unlockA := l.lock("a")
	unlockB := l.lock("b")
	assert.Equal(t, 2, l.held())
	unlockA()
	unlockB()
	assert.Zero(t, l.held())
}
