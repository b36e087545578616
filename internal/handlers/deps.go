package handlers

import (
	"database/sql"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"klondike-go/internal/config"
	"klondike-go/internal/solitaire"
	ws "klondike-go/pkg/websocket"
)

// Deps carries what the HTTP and websocket handlers share. Use it by pointer.
type Deps struct {
	DB     *sql.DB
	Config config.Config
	Logger *log.Logger
	Clock  quartz.Clock
	Dealer *solitaire.Dealer
	// Hub returns the running websocket hub, if any.
	Hub func() (*ws.Hub, bool)

	locks gameLocks
}

func (d *Deps) now() time.Time {
	if d.Clock == nil {
		return time.Now().UTC()
	}
	return d.Clock.Now().UTC()
}

func (d *Deps) logger() *log.Logger {
	if d.Logger == nil {
		return log.Default()
	}
	return d.Logger
}

func (d *Deps) hub() (*ws.Hub, bool) {
	if d.Hub == nil {
		return nil, false
	}
	return d.Hub()
}
