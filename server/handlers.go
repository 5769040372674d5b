package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/onnwee/seenbot/timeago"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	deps Deps
	now  func() time.Time
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(deps Deps) *Handlers {
	return &Handlers{deps: deps, now: time.Now}
}

type seenResponse struct {
	Network    string     `json:"network"`
	Nick       string     `json:"nick"`
	Found      bool       `json:"found"`
	Kind       string     `json:"kind,omitempty"`
	OccurredAt *time.Time `json:"occurred_at,omitempty"`
	Ago        string     `json:"ago,omitempty"`
	Reply      string     `json:"reply"`
}

// HandleSeen answers GET /seen?network=&nick= with the same reply the chat
// command would give, plus the raw event fields.
func (h *Handlers) HandleSeen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	nick := strings.TrimSpace(r.URL.Query().Get("nick"))
	if nick == "" {
		http.Error(w, "missing nick", http.StatusBadRequest)
		return
	}
	network := strings.TrimSpace(r.URL.Query().Get("network"))
	if network == "" {
		network = h.deps.Network
	}

	ans := h.deps.Querier.Lookup(r.Context(), network, "", nick, h.deps.Self)
	resp := seenResponse{Network: network, Nick: nick, Found: ans.Found, Reply: ans.Reply}
	if ans.Found {
		at := ans.Event.OccurredAt
		resp.Kind = ans.Event.Kind().String()
		resp.OccurredAt = &at
		resp.Ago = timeago.Since(at, h.now(), timeago.DefaultUnits)
	}

	status := http.StatusOK
	if ans.Err != nil {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
