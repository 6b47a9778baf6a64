package net

import (
	"encoding/json"
	"log"
	nethttp "net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/diegofer25/neon-siege-sub003/internal/store"
	"github.com/diegofer25/neon-siege-sub003/internal/telemetry"
)

// HTTPHandlerConfig tunes the HTTP surface.
type HTTPHandlerConfig struct {
	ClientDir string
	TickRate  int
	Logger    telemetry.Logger
}

// NewHTTPHandler builds the HTTP mux: health and diagnostics probes, a
// state dump for debugging, the action log, and the websocket
// endpoint.
func NewHTTPHandler(hub *Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var tick, version uint64
		hub.WithRuntime(func() {
			tick = hub.game.Tick()
			version = hub.st.Version()
		})
		payload := struct {
			Status       string `json:"status"`
			ServerTime   int64  `json:"serverTime"`
			Tick         uint64 `json:"tick"`
			StoreVersion uint64 `json:"storeVersion"`
			Sessions     int    `json:"sessions"`
			QueuedCmds   int    `json:"queuedCommands"`
			TickRate     int    `json:"tickRate"`
		}{
			Status:       "ok",
			ServerTime:   time.Now().UnixMilli(),
			Tick:         tick,
			StoreVersion: version,
			Sessions:     hub.Sessions(),
			QueuedCmds:   hub.Queue().Len(),
			TickRate:     cfg.TickRate,
		}
		writeJSON(w, payload)
	})

	mux.HandleFunc("/state", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			nethttp.Error(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		var state store.Serialized
		hub.WithRuntime(func() {
			state = hub.st.Serialize()
		})
		writeJSON(w, state)
	})

	mux.HandleFunc("/actions", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			nethttp.Error(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, hub.game.Dispatcher().ActionLog())
	})

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	mux.HandleFunc("/ws", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Printf("net: upgrade failed: %v", err)
			return
		}
		hub.Serve(conn)
	})

	if cfg.ClientDir != "" {
		mux.Handle("/", nethttp.FileServer(nethttp.Dir(cfg.ClientDir)))
	}

	return mux
}

func writeJSON(w nethttp.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		nethttp.Error(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
