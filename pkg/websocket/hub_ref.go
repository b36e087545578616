package websocket

import "sync/atomic"

// HubRef points at the currently running Hub. The server swaps in a fresh hub
// after a crash without restarting HTTP; handlers call Get for each connection.
type HubRef struct {
	p atomic.Pointer[Hub]
}

func NewHubRef(initial *Hub) *HubRef {
	r := &HubRef{}
	r.p.Store(initial)
	return r
}

func (r *HubRef) Get() (*Hub, bool) {
	h := r.p.Load()
	return h, h != nil
}

func (r *HubRef) Set(h *Hub) {
	r.p.Store(h)
}
