package dispatch_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/diegofer25/neon-siege-sub003/internal/dispatch"
	"github.com/diegofer25/neon-siege-sub003/internal/slices"
	"github.com/diegofer25/neon-siege-sub003/internal/store"
)

type testLog struct {
	lines []string
}

func (l *testLog) Printf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *testLog) contains(substr string) bool {
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func num(v any) float64 {
	f, _ := v.(float64)
	return f
}

func newPipeline(t *testing.T) (*dispatch.Dispatcher, *store.Store, *testLog) {
	t.Helper()
	warns := &testLog{}
	st := store.New(store.Deps{Logger: warns})
	for _, name := range slices.Names() {
		if err := st.RegisterSlice(name, store.Builder(slices.Builders()[name])); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	d, err := dispatch.New(dispatch.Deps{Store: st, Logger: warns})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	return d, st, warns
}

func addScoreReducer(d *dispatch.Dispatcher) {
	d.AddReducer(dispatch.ActionScoreAdd, slices.Run, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		return map[string]any{"score": num(record["score"]) + num(action.Payload["amount"])}
	})
}

func TestScoreAddReducesAndLogs(t *testing.T) {
	d, st, _ := newPipeline(t)
	addScoreReducer(d)
	st.Set(slices.Run, map[string]any{"score": float64(100)})

	ok := d.Dispatch(dispatch.Action{
		Type:    dispatch.ActionScoreAdd,
		Payload: map[string]any{"amount": float64(50)},
	})

	if !ok {
		t.Fatalf("dispatch reported failure")
	}
	if got := st.Get(slices.Run, "score"); got != float64(150) {
		t.Fatalf("score = %v, want 150", got)
	}
	log := d.ActionLog()
	if len(log) != 1 {
		t.Fatalf("expected one log entry, got %d", len(log))
	}
	if log[0].Type != dispatch.ActionScoreAdd || log[0].Seq != 1 {
		t.Fatalf("unexpected entry: %+v", log[0])
	}
	if got := num(log[0].Payload["amount"]); got != 50 {
		t.Fatalf("payload amount = %v, want 50", got)
	}
}

func TestReentrantDispatchDrainsFIFO(t *testing.T) {
	d, _, _ := newPipeline(t)
	var order []string
	mark := func(name string) dispatch.Reducer {
		return func(map[string]any, dispatch.Action, store.View) map[string]any {
			order = append(order, name)
			return nil
		}
	}
	d.AddReducer("A", slices.Run, mark("A"))
	d.AddReducer("B", slices.Run, mark("B"))
	d.AddReducer("C", slices.Run, mark("C"))
	d.AddReducer("D", slices.Run, mark("D"))

	d.AddEffect("A", func(_ dispatch.Action, _ store.View, dispatchFn func(dispatch.Action) bool) {
		if !dispatchFn(dispatch.Action{Type: "B"}) {
			t.Errorf("queued dispatch B rejected")
		}
		dispatchFn(dispatch.Action{Type: "C"})
	})
	d.AddEffect("B", func(_ dispatch.Action, _ store.View, dispatchFn func(dispatch.Action) bool) {
		dispatchFn(dispatch.Action{Type: "D"})
	})

	d.Dispatch(dispatch.Action{Type: "A"})

	want := []string{"A", "B", "C", "D"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatalf("drain order mismatch (-want +got):\n%s", diff)
	}
}

func TestMiddlewareTransformsAndSwallows(t *testing.T) {
	d, st, _ := newPipeline(t)
	addScoreReducer(d)

	// Doubles every SCORE_ADD and swallows GOLD_ADD outright.
	d.Use(func(action dispatch.Action, _ store.View, next func(dispatch.Action)) {
		switch action.Type {
		case dispatch.ActionScoreAdd:
			next(dispatch.Action{
				Type:    action.Type,
				Payload: map[string]any{"amount": num(action.Payload["amount"]) * 2},
			})
		case dispatch.ActionGoldAdd:
			// swallowed
		default:
			next(action)
		}
	})

	if ok := d.Dispatch(dispatch.Action{Type: dispatch.ActionScoreAdd, Payload: map[string]any{"amount": float64(10)}}); !ok {
		t.Fatalf("transformed dispatch failed")
	}
	if got := st.Get(slices.Run, "score"); got != float64(20) {
		t.Fatalf("score = %v, want 20", got)
	}

	if ok := d.Dispatch(dispatch.Action{Type: dispatch.ActionGoldAdd, Payload: map[string]any{"amount": float64(5)}}); ok {
		t.Fatalf("swallowed action reported as committed")
	}
	if got := len(d.ActionLog()); got != 1 {
		t.Fatalf("swallowed action reached the log: %d entries", got)
	}
}

func TestReducerPanicIsolatesSiblings(t *testing.T) {
	d, st, warns := newPipeline(t)
	d.AddReducer(dispatch.ActionEnemyKilled, slices.Run, func(map[string]any, dispatch.Action, store.View) map[string]any {
		panic("broken reducer")
	})
	d.AddReducer(dispatch.ActionEnemyKilled, slices.Combat, func(record map[string]any, _ dispatch.Action, _ store.View) map[string]any {
		return map[string]any{"killsThisWave": num(record["killsThisWave"]) + 1}
	})

	if ok := d.Dispatch(dispatch.Action{Type: dispatch.ActionEnemyKilled}); !ok {
		t.Fatalf("action with one panicking reducer should still commit")
	}
	if got := st.Get(slices.Combat, "killsThisWave"); got != float64(1) {
		t.Fatalf("sibling reducer did not apply: %v", got)
	}
	if !warns.contains("reducer panic") {
		t.Fatalf("reducer panic not logged: %v", warns.lines)
	}
}

func TestEffectPanicIsRecovered(t *testing.T) {
	d, _, warns := newPipeline(t)
	d.AddEffect(dispatch.ActionRunStart, func(dispatch.Action, store.View, func(dispatch.Action) bool) {
		panic("broken effect")
	})
	var ran bool
	d.AddEffect(dispatch.ActionRunStart, func(dispatch.Action, store.View, func(dispatch.Action) bool) {
		ran = true
	})

	d.Dispatch(dispatch.Action{Type: dispatch.ActionRunStart})

	if !ran {
		t.Fatalf("sibling effect did not run after panic")
	}
	if !warns.contains("effect panic") {
		t.Fatalf("effect panic not logged: %v", warns.lines)
	}
}

func TestEmptyActionTypeRejected(t *testing.T) {
	d, _, warns := newPipeline(t)
	if ok := d.Dispatch(dispatch.Action{}); ok {
		t.Fatalf("empty action type accepted")
	}
	if got := len(d.ActionLog()); got != 0 {
		t.Fatalf("rejected action reached the log")
	}
	if !warns.contains("empty type") {
		t.Fatalf("rejection not logged: %v", warns.lines)
	}
}

func TestDispatchBatchCoalescesNotifications(t *testing.T) {
	d, st, _ := newPipeline(t)
	addScoreReducer(d)
	d.AddReducer(dispatch.ActionGoldAdd, slices.Run, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		return map[string]any{"gold": num(record["gold"]) + num(action.Payload["amount"])}
	})

	var notifications int
	st.OnSlice(slices.Run, func(map[string]any, []string) { notifications++ })

	ok := d.DispatchBatch([]dispatch.Action{
		{Type: dispatch.ActionScoreAdd, Payload: map[string]any{"amount": float64(10)}},
		{Type: dispatch.ActionGoldAdd, Payload: map[string]any{"amount": float64(3)}},
	})

	if !ok {
		t.Fatalf("batch reported failure")
	}
	if notifications != 1 {
		t.Fatalf("expected one coalesced notification, got %d", notifications)
	}
	if st.Get(slices.Run, "score") != float64(10) || st.Get(slices.Run, "gold") != float64(3) {
		t.Fatalf("batch writes missing: %v", st.GetSlice(slices.Run))
	}
}

func TestRemoveEffect(t *testing.T) {
	d, _, _ := newPipeline(t)
	hits := 0
	remove := d.AddEffect(dispatch.ActionWaveStart, func(dispatch.Action, store.View, func(dispatch.Action) bool) {
		hits++
	})
	d.Dispatch(dispatch.Action{Type: dispatch.ActionWaveStart})
	remove()
	remove()
	d.Dispatch(dispatch.Action{Type: dispatch.ActionWaveStart})

	if hits != 1 {
		t.Fatalf("effect ran %d times, want 1", hits)
	}
}

func TestActionLogCapAndResume(t *testing.T) {
	warns := &testLog{}
	st := store.New(store.Deps{Logger: warns})
	if err := st.RegisterSlice(slices.Run, store.Builder(slices.Builders()[slices.Run])); err != nil {
		t.Fatalf("register: %v", err)
	}
	d, err := dispatch.New(dispatch.Deps{Store: st, Logger: warns, LogCapacity: 3})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	for i := 0; i < 5; i++ {
		d.Dispatch(dispatch.Action{Type: dispatch.ActionScoreAdd, Payload: map[string]any{"amount": float64(i)}})
	}

	log := d.ActionLog()
	if len(log) != 3 {
		t.Fatalf("log length = %d, want 3", len(log))
	}
	if log[0].Seq != 3 || log[2].Seq != 5 {
		t.Fatalf("unexpected retained window: %d..%d", log[0].Seq, log[2].Seq)
	}

	stats := d.ActionLogStats()
	if stats.Appended != 5 || stats.Dropped != 2 {
		t.Fatalf("stats = %+v, want appended 5 dropped 2", stats)
	}

	resumed := d.ActionLogSince(4)
	if len(resumed) != 1 || resumed[0].Seq != 5 {
		t.Fatalf("resume window wrong: %+v", resumed)
	}
	if got := d.ActionLogSince(99); len(got) != 0 {
		t.Fatalf("future resume should be empty, got %+v", got)
	}
}

func TestHookObservesEntries(t *testing.T) {
	d, _, _ := newPipeline(t)
	var seen []uint64
	d.SetHook(func(entry dispatch.Entry) { seen = append(seen, entry.Seq) })

	d.Dispatch(dispatch.Action{Type: dispatch.ActionRunStart})
	d.Dispatch(dispatch.Action{Type: dispatch.ActionRunEnd})

	if diff := cmp.Diff([]uint64{1, 2}, seen); diff != "" {
		t.Fatalf("hook sequence mismatch (-want +got):\n%s", diff)
	}
}
