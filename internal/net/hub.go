// Package net is the client-facing surface of the runtime: a
// websocket hub streaming state patches and an HTTP mux for health and
// diagnostics. The hub owns the frame mutex; everything that touches
// the store or the game manager runs under it.
package net

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diegofer25/neon-siege-sub003/internal/dispatch"
	"github.com/diegofer25/neon-siege-sub003/internal/game"
	"github.com/diegofer25/neon-siege-sub003/internal/net/intake"
	"github.com/diegofer25/neon-siege-sub003/internal/net/proto"
	"github.com/diegofer25/neon-siege-sub003/internal/store"
	"github.com/diegofer25/neon-siege-sub003/internal/telemetry"
	"github.com/diegofer25/neon-siege-sub003/logging"
	lognetwork "github.com/diegofer25/neon-siege-sub003/logging/network"
)

// HubConfig tunes the hub.
type HubConfig struct {
	QueueCapacity int
	Logger        telemetry.Logger
	Metrics       telemetry.Metrics
	Publisher     logging.Publisher
}

// Hub fans state out to sessions and funnels commands in through the
// intake queue.
type Hub struct {
	game  *game.Manager
	st    *store.Store
	queue *intake.Queue

	logger    telemetry.Logger
	metrics   telemetry.Metrics
	publisher logging.Publisher

	// mu is the frame mutex: Frame holds it for a whole tick, Serve
	// holds it while taking the hello snapshot.
	mu sync.Mutex

	sessionsMu sync.Mutex
	sessions   map[string]*Session

	dirty      map[string]struct{}
	lastLogSeq uint64
}

// NewHub wires a hub onto a running game manager.
func NewHub(g *game.Manager, st *store.Store, cfg HubConfig) *Hub {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	h := &Hub{
		game:      g,
		st:        st,
		queue:     intake.NewQueue(cfg.QueueCapacity),
		logger:    logger,
		metrics:   cfg.Metrics,
		publisher: publisher,
		sessions:  make(map[string]*Session),
		dirty:     make(map[string]struct{}),
	}
	st.OnAny(func(slice string, _ map[string]any, _ []string) {
		h.dirty[slice] = struct{}{}
	})
	return h
}

// Queue exposes the intake queue for tests.
func (h *Hub) Queue() *intake.Queue { return h.queue }

// Sessions reports how many clients are attached.
func (h *Hub) Sessions() int {
	h.sessionsMu.Lock()
	defer h.sessionsMu.Unlock()
	return len(h.sessions)
}

// Frame runs one full tick under the frame mutex: drain staged
// commands, advance the runtime, broadcast the resulting patch.
func (h *Hub) Frame(delta float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queue.Drain(h.apply)
	h.game.Advance(delta)
	h.broadcastPatch()
}

// WithRuntime runs fn under the frame mutex. The autosave path uses it
// so snapshots never interleave with a tick.
func (h *Hub) WithRuntime(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn()
}

func (h *Hub) apply(cmd intake.Command) {
	switch cmd.Type {
	case intake.CommandStartRun:
		h.game.StartRun(cmd.Seed)
	case intake.CommandEndRun:
		h.game.EndRun()
	case intake.CommandCast:
		h.game.CastSkill(cmd.SkillID, cmd.TargetX, cmd.TargetY)
	case intake.CommandEquip:
		h.game.EquipSkill(cmd.SkillID, cmd.Rank, cmd.Config)
	case intake.CommandUnequip:
		h.game.UnequipSkill(cmd.SkillID)
	case intake.CommandRankUp:
		h.game.Dispatcher().Dispatch(dispatch.Action{
			Type:    dispatch.ActionSkillRankUp,
			Payload: map[string]any{"skillId": cmd.SkillID},
		})
	case intake.CommandAllocate:
		h.game.AllocateAttribute(cmd.Attribute)
	case intake.CommandAscend:
		h.game.Ascend()
	case intake.CommandAscendReroll:
		h.game.RerollAscensions()
	case intake.CommandAscendChoose:
		h.game.ChooseAscension(cmd.ModifierID)
	case intake.CommandSettings:
		h.game.Dispatcher().Dispatch(dispatch.Action{
			Type:    dispatch.ActionSettingsSet,
			Payload: cmd.Settings,
		})
	default:
		h.logger.Printf("net: dropping staged command %q", cmd.Type)
	}
}

// broadcastPatch sends the coalesced dirty slices and fresh action-log
// entries to every session. Runs under the frame mutex.
func (h *Hub) broadcastPatch() {
	entries := h.game.Dispatcher().ActionLogSince(h.lastLogSeq)
	if len(entries) > 0 {
		h.lastLogSeq = entries[len(entries)-1].Seq
	}
	if len(h.dirty) == 0 && len(entries) == 0 {
		return
	}
	changed := make(map[string]map[string]any, len(h.dirty))
	for slice := range h.dirty {
		changed[slice] = h.st.GetSlice(slice)
		delete(h.dirty, slice)
	}
	data, err := proto.EncodePatch(proto.Patch{
		Tick:    h.game.Tick(),
		Version: h.st.Version(),
		Slices:  changed,
		Actions: entries,
	})
	if err != nil {
		h.logger.Printf("net: failed to encode patch: %v", err)
		return
	}
	if h.metrics != nil {
		h.metrics.Add("patch_bytes", uint64(len(data)))
	}
	for _, session := range h.snapshotSessions() {
		if err := session.Write(data); err != nil {
			h.detach(session, err)
		}
	}
}

func (h *Hub) snapshotSessions() []*Session {
	h.sessionsMu.Lock()
	defer h.sessionsMu.Unlock()
	out := make([]*Session, 0, len(h.sessions))
	for _, session := range h.sessions {
		out = append(out, session)
	}
	return out
}

func (h *Hub) detach(session *Session, cause error) {
	h.sessionsMu.Lock()
	_, attached := h.sessions[session.id]
	delete(h.sessions, session.id)
	remaining := len(h.sessions)
	h.sessionsMu.Unlock()
	if !attached {
		return
	}
	session.conn.Close()
	if cause != nil {
		h.logger.Printf("net: session %s dropped: %v", session.id, cause)
	}
	lognetwork.Disconnected(context.Background(), h.publisher, h.game.Tick(), lognetwork.SessionPayload{
		SessionID: session.id,
		Sessions:  remaining,
	})
}

// Serve attaches a connection and runs its read loop until the client
// goes away. Blocks for the lifetime of the session.
func (h *Hub) Serve(conn Conn) {
	session := &Session{id: uuid.NewString(), conn: conn}

	// Hello snapshot between ticks so the client starts consistent.
	h.mu.Lock()
	state := h.st.Serialize()
	tick := h.game.Tick()
	logSeq := h.lastLogSeq
	h.mu.Unlock()

	hello, err := proto.EncodeHello(tick, state, logSeq)
	if err != nil {
		h.logger.Printf("net: failed to encode hello: %v", err)
		conn.Close()
		return
	}
	if err := session.Write(hello); err != nil {
		conn.Close()
		return
	}

	h.sessionsMu.Lock()
	h.sessions[session.id] = session
	attached := len(h.sessions)
	h.sessionsMu.Unlock()
	lognetwork.Connected(context.Background(), h.publisher, tick, lognetwork.SessionPayload{
		SessionID: session.id,
		Sessions:  attached,
	})

	h.readLoop(session)
}

func (h *Hub) readLoop(session *Session) {
	for {
		_, payload, err := session.conn.ReadMessage()
		if err != nil {
			h.detach(session, err)
			return
		}

		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			h.logger.Printf("net: discarding malformed message from %s: %v", session.id, err)
			continue
		}

		if msg.Ack != nil {
			h.recordAck(session, *msg.Ack)
		}

		switch msg.Type {
		case proto.TypeHeartbeat:
			data, err := proto.EncodeHeartbeat(proto.Heartbeat{
				ServerTime: time.Now().UnixMilli(),
				ClientTime: msg.SentAt,
			})
			if err != nil {
				h.logger.Printf("net: failed to encode heartbeat for %s: %v", session.id, err)
				continue
			}
			if err := session.Write(data); err != nil {
				h.detach(session, err)
				return
			}
		case proto.TypeAck, "":
			// Ack-only frames carry no command.
		default:
			if !h.stageCommand(session, msg) {
				return
			}
		}
	}
}

// stageCommand validates, dedupes and enqueues one command, answering
// with an ack or reject when the client attached a sequence number.
// Returns false when the session died mid-answer.
func (h *Hub) stageCommand(session *Session, msg proto.ClientMessage) bool {
	seq := uint64(0)
	if msg.Seq != nil {
		seq = *msg.Seq
	}

	reject := func(reason string, retry bool) bool {
		lognetwork.CommandRejected(context.Background(), h.publisher, h.game.Tick(), lognetwork.RejectPayload{
			SessionID: session.id,
			Command:   msg.Type,
			Seq:       seq,
			Reason:    reason,
		})
		if seq == 0 {
			return true
		}
		data, err := proto.EncodeCommandReject(proto.CommandReject{Seq: seq, Reason: reason, Retry: retry})
		if err != nil {
			return true
		}
		if err := session.Write(data); err != nil {
			h.detach(session, err)
			return false
		}
		return true
	}

	if seq > 0 {
		if last := session.LastCommandSeq(); last > 0 && seq <= last {
			// Duplicate delivery; re-ack so the client stops retrying.
			data, err := proto.EncodeCommandAck(proto.CommandAck{Seq: seq})
			if err != nil {
				return true
			}
			if err := session.Write(data); err != nil {
				h.detach(session, err)
				return false
			}
			return true
		}
	}

	cmd, ok := intake.FromClientMessage(msg)
	if !ok {
		return reject(intake.RejectInvalidCommand, false)
	}
	cmd.SessionID = session.id
	cmd.OriginTick = h.game.Tick()
	cmd.IssuedAt = time.Now()

	if ok, reason := h.queue.Enqueue(cmd); !ok {
		return reject(reason, reason == intake.RejectQueueFull)
	}

	if seq > 0 {
		data, err := proto.EncodeCommandAck(proto.CommandAck{Seq: seq, Tick: cmd.OriginTick})
		if err != nil {
			return true
		}
		if err := session.Write(data); err != nil {
			h.detach(session, err)
			return false
		}
		session.StoreLastCommandSeq(seq)
	}
	return true
}

func (h *Hub) recordAck(session *Session, ack uint64) {
	previous, advanced := session.RecordAck(ack)
	payload := lognetwork.AckPayload{Previous: previous, Ack: ack}
	if advanced {
		lognetwork.AckAdvanced(context.Background(), h.publisher, h.game.Tick(), session.id, payload)
		return
	}
	if ack < previous {
		lognetwork.AckRegression(context.Background(), h.publisher, h.game.Tick(), session.id, payload)
	}
}
