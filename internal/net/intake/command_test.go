package intake

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/diegofer25/neon-siege-sub003/internal/net/proto"
)

func TestFromClientMessageMapsCommands(t *testing.T) {
	seq := uint64(11)
	cases := []struct {
		name string
		msg  proto.ClientMessage
		want Command
	}{
		{
			name: "start run",
			msg:  proto.ClientMessage{Type: proto.TypeStartRun, Seed: "abc", Seq: &seq},
			want: Command{Type: CommandStartRun, Seed: "abc", Seq: 11},
		},
		{
			name: "cast",
			msg:  proto.ClientMessage{Type: proto.TypeCast, SkillID: "fireball", X: 3, Y: -2},
			want: Command{Type: CommandCast, SkillID: "fireball", TargetX: 3, TargetY: -2},
		},
		{
			name: "equip",
			msg:  proto.ClientMessage{Type: proto.TypeEquip, SkillID: "rapid_fire", Rank: 2},
			want: Command{Type: CommandEquip, SkillID: "rapid_fire", Rank: 2},
		},
		{
			name: "equip with config",
			msg: proto.ClientMessage{
				Type: proto.TypeEquip, SkillID: "aegis_field", Rank: 1,
				Config: map[string]any{"ringColor": "cyan"},
			},
			want: Command{
				Type: CommandEquip, SkillID: "aegis_field", Rank: 1,
				Config: map[string]any{"ringColor": "cyan"},
			},
		},
		{
			name: "ascend",
			msg:  proto.ClientMessage{Type: proto.TypeAscend},
			want: Command{Type: CommandAscend},
		},
		{
			name: "ascend choose",
			msg:  proto.ClientMessage{Type: proto.TypeAscendChoose, ModifierID: "sharpened_core"},
			want: Command{Type: CommandAscendChoose, ModifierID: "sharpened_core"},
		},
		{
			name: "allocate",
			msg:  proto.ClientMessage{Type: proto.TypeAllocate, Attribute: "vigor"},
			want: Command{Type: CommandAllocate, Attribute: "vigor"},
		},
		{
			name: "settings",
			msg:  proto.ClientMessage{Type: proto.TypeSettings, Settings: map[string]any{"musicVolume": 0.5}},
			want: Command{Type: CommandSettings, Settings: map[string]any{"musicVolume": 0.5}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FromClientMessage(tc.msg)
			if !ok {
				t.Fatalf("expected the message to map")
			}
			if diff := cmp.Diff(tc.want, got, cmpopts.IgnoreFields(Command{}, "IssuedAt")); diff != "" {
				t.Fatalf("command mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromClientMessageRefusesIncompleteCommands(t *testing.T) {
	cases := []proto.ClientMessage{
		{Type: proto.TypeCast},
		{Type: proto.TypeEquip},
		{Type: proto.TypeAllocate},
		{Type: proto.TypeSettings},
		{Type: proto.TypeAscendChoose},
		{Type: "warp"},
		{Type: proto.TypeHeartbeat},
	}
	for _, msg := range cases {
		if _, ok := FromClientMessage(msg); ok {
			t.Fatalf("expected %q to be refused", msg.Type)
		}
	}
}

func TestQueueRefusesWhenFull(t *testing.T) {
	q := NewQueue(2)
	if ok, _ := q.Enqueue(Command{Type: CommandEndRun}); !ok {
		t.Fatalf("expected the first enqueue to pass")
	}
	if ok, _ := q.Enqueue(Command{Type: CommandEndRun}); !ok {
		t.Fatalf("expected the second enqueue to pass")
	}
	ok, reason := q.Enqueue(Command{Type: CommandEndRun})
	if ok || reason != RejectQueueFull {
		t.Fatalf("expected a queue_full rejection, got ok=%v reason=%q", ok, reason)
	}
}

func TestDrainPreservesArrivalOrder(t *testing.T) {
	q := NewQueue(8)
	q.Enqueue(Command{Type: CommandStartRun})
	q.Enqueue(Command{Type: CommandEquip, SkillID: "a"})
	q.Enqueue(Command{Type: CommandCast, SkillID: "b"})

	var order []string
	drained := q.Drain(func(cmd Command) {
		order = append(order, cmd.Type)
	})
	if drained != 3 {
		t.Fatalf("expected 3 drained commands, got %d", drained)
	}
	want := []string{CommandStartRun, CommandEquip, CommandCast}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatalf("drain order mismatch (-want +got):\n%s", diff)
	}
	if q.Len() != 0 {
		t.Fatalf("expected an empty queue after drain, got %d", q.Len())
	}
}
