package devserver

const ClientBuffer = clientBuffer

var InjectReloadScript = injectReloadScript

// Subscribe registers a client that never reads, for drop tests.
func (h *Hub) Subscribe() (done <-chan struct{}, ok bool) {
	_, c, ok := h.subscribe()
	if !ok {
		return nil, false
	}
	return c.done, true
}
