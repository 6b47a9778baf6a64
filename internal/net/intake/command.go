// Package intake stages client commands for the game goroutine. The
// read loop of every session enqueues here; the fixed-timestep loop
// drains the queue at the top of each frame, so commands only ever
// touch the runtime single-threaded.
package intake

import (
	"time"

	"github.com/diegofer25/neon-siege-sub003/internal/net/proto"
)

// Command types accepted from clients.
const (
	CommandStartRun     = "startRun"
	CommandEndRun       = "endRun"
	CommandCast         = "cast"
	CommandEquip        = "equip"
	CommandUnequip      = "unequip"
	CommandRankUp       = "rankUp"
	CommandAllocate     = "allocate"
	CommandSettings     = "settings"
	CommandAscend       = "ascend"
	CommandAscendReroll = "ascendReroll"
	CommandAscendChoose = "ascendChoose"
)

// Rejection reasons reported back to the client.
const (
	RejectInvalidCommand = "invalid_command"
	RejectQueueFull      = "queue_full"
)

// Command is one staged client command with its origin metadata.
type Command struct {
	Type      string
	SessionID string
	Seq       uint64

	Seed       string
	SkillID    string
	Rank       int
	Config     map[string]any
	Attribute  string
	ModifierID string
	TargetX    float64
	TargetY    float64
	Settings   map[string]any

	OriginTick uint64
	IssuedAt   time.Time
}

// FromClientMessage converts a decoded wire message into a staged
// command. Messages that carry no command (heartbeat, ack) and
// messages missing their required fields return false.
func FromClientMessage(msg proto.ClientMessage) (Command, bool) {
	var cmd Command
	switch msg.Type {
	case proto.TypeStartRun:
		cmd.Type = CommandStartRun
		cmd.Seed = msg.Seed
	case proto.TypeEndRun:
		cmd.Type = CommandEndRun
	case proto.TypeCast:
		if msg.SkillID == "" {
			return cmd, false
		}
		cmd.Type = CommandCast
		cmd.SkillID = msg.SkillID
		cmd.TargetX = msg.X
		cmd.TargetY = msg.Y
	case proto.TypeEquip:
		if msg.SkillID == "" {
			return cmd, false
		}
		cmd.Type = CommandEquip
		cmd.SkillID = msg.SkillID
		cmd.Rank = msg.Rank
		cmd.Config = msg.Config
	case proto.TypeUnequip:
		if msg.SkillID == "" {
			return cmd, false
		}
		cmd.Type = CommandUnequip
		cmd.SkillID = msg.SkillID
	case proto.TypeRankUp:
		if msg.SkillID == "" {
			return cmd, false
		}
		cmd.Type = CommandRankUp
		cmd.SkillID = msg.SkillID
	case proto.TypeAllocate:
		if msg.Attribute == "" {
			return cmd, false
		}
		cmd.Type = CommandAllocate
		cmd.Attribute = msg.Attribute
	case proto.TypeSettings:
		if len(msg.Settings) == 0 {
			return cmd, false
		}
		cmd.Type = CommandSettings
		cmd.Settings = msg.Settings
	case proto.TypeAscend:
		cmd.Type = CommandAscend
	case proto.TypeAscendReroll:
		cmd.Type = CommandAscendReroll
	case proto.TypeAscendChoose:
		if msg.ModifierID == "" {
			return cmd, false
		}
		cmd.Type = CommandAscendChoose
		cmd.ModifierID = msg.ModifierID
	default:
		return cmd, false
	}
	if msg.Seq != nil {
		cmd.Seq = *msg.Seq
	}
	return cmd, true
}

// Queue is the bounded FIFO between connection goroutines and the
// game loop.
type Queue struct {
	commands chan Command
}

// DefaultCapacity bounds the queue when the caller passes zero.
const DefaultCapacity = 256

// NewQueue constructs a bounded command queue.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{commands: make(chan Command, capacity)}
}

// Enqueue stages a command without blocking. A full queue refuses the
// command so a stalled loop cannot wedge every connection goroutine.
func (q *Queue) Enqueue(cmd Command) (bool, string) {
	if q == nil {
		return false, RejectQueueFull
	}
	select {
	case q.commands <- cmd:
		return true, ""
	default:
		return false, RejectQueueFull
	}
}

// Drain applies every currently staged command in arrival order and
// returns how many ran. It never blocks waiting for more.
func (q *Queue) Drain(apply func(Command)) int {
	if q == nil || apply == nil {
		return 0
	}
	drained := 0
	for {
		select {
		case cmd := <-q.commands:
			apply(cmd)
			drained++
		default:
			return drained
		}
	}
}

// Len reports how many commands are currently staged.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.commands)
}
