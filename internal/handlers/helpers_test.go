package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"klondike-go/internal/config"
	"klondike-go/internal/database"
	"klondike-go/internal/logging"
	"klondike-go/internal/solitaire"
	ws "klondike-go/pkg/websocket"
)

type testEnv struct {
	t      *testing.T
	deps   *Deps
	router *gin.Engine
	clock  *quartz.Mock
	hub    *ws.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	db, err := database.OpenAndMigrate(ctx, filepath.Join(t.TempDir(), "test.db"), logging.Discard())
	require.NoError(t, err)

	clock := quartz.NewMock(t)
	hub := ws.NewHub(logging.Discard(), clock)
	go func() { _ = hub.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
		_ = db.Close()
	})

	cfg := config.Config{
		JWTSecret: "test-secret",
		JWTIssuer: "klondike",
		JWTTTL:    time.Hour,
		AppEnv:    "development",
	}
	d := &Deps{
		DB:     db,
		Config: cfg,
		Logger: logging.Discard(),
		Clock:  clock,
		Dealer: solitaire.NewDealer(42),
		Hub:    ws.NewHubRef(hub).Get,
	}
	r := gin.New()
	RegisterRoutes(r, d)
	return &testEnv{t: t, deps: d, router: r, clock: clock, hub: hub}
}

func (e *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// signup registers username and returns a session token for it.
func (e *testEnv) signup(username string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/v1/user", gin.H{"username": username, "password": "password123"}, "")
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(http.MethodPost, "/v1/session", gin.H{"username": username, "password": "password123"}, "")
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	var resp sessionResponse
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(e.t, resp.Token)
	return resp.Token
}

func (e *testEnv) newGame(token string, draw any) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/v1/game", gin.H{"game": "klondike", "color": "red", "draw": draw}, token)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(e.t, resp.ID)
	return resp.ID
}

type gameResp struct {
	ID             string          `json:"id"`
	Owner          string          `json:"owner"`
	Active         bool            `json:"active"`
	Won            bool            `json:"won"`
	Score          int             `json:"score"`
	Moves          json.RawMessage `json:"moves"`
	Winner         string          `json:"winner"`
	DrawCount      int             `json:"drawCount"`
	CardsRemaining int             `json:"cards_remaining"`
	Start          time.Time       `json:"start"`

	State solitaire.State `json:"-"`
}

func decodeGame(t *testing.T, body []byte) gameResp {
	t.Helper()
	var g gameResp
	require.NoError(t, json.Unmarshal(body, &g))
	require.NoError(t, json.Unmarshal(body, &g.State))
	return g
}

func (e *testEnv) getGame(id string) gameResp {
	e.t.Helper()
	w := e.do(http.MethodGet, "/v1/game/"+id, nil, "")
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	return decodeGame(e.t, w.Body.Bytes())
}

func moveCount(t *testing.T, g gameResp) int {
	t.Helper()
	var n int
	require.NoError(t, json.Unmarshal(g.Moves, &n))
	return n
}

func drawMove(st solitaire.State) solitaire.Move {
	draw := st.Cards(solitaire.Draw)
	return solitaire.Move{Cards: draw[len(draw)-1:], Src: solitaire.Draw, Dst: solitaire.Discard}
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Error
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}
