package game_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/diegofer25/neon-siege-sub003/internal/ascension"
	"github.com/diegofer25/neon-siege-sub003/internal/dispatch"
	"github.com/diegofer25/neon-siege-sub003/internal/entity"
	"github.com/diegofer25/neon-siege-sub003/internal/events"
	"github.com/diegofer25/neon-siege-sub003/internal/game"
	"github.com/diegofer25/neon-siege-sub003/internal/skills"
	"github.com/diegofer25/neon-siege-sub003/internal/skills/arsenal"
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

type fixture struct {
	st      *store.Store
	bus     *events.Bus
	world   *entity.World
	pool    *ascension.Pool
	manager *game.Manager
	log     *testLog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := &testLog{}
	st := store.New(store.Deps{Logger: log})
	for _, name := range slices.Names() {
		if err := st.RegisterSlice(name, store.Builder(slices.Builders()[name])); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	bus := events.NewBus(log, nil)
	world := entity.NewWorld()
	pool := ascension.NewPool(ascension.Deps{Logger: log, Rand: func() float64 { return 0 }})
	manager, err := game.New(game.Deps{
		Store:   st,
		Bus:     bus,
		World:   world,
		Pool:    pool,
		Catalog: arsenal.Catalog(),
		Logger:  log,
		Seed:    7,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return &fixture{st: st, bus: bus, world: world, pool: pool, manager: manager, log: log}
}

func (f *fixture) num(slice, key string) float64 {
	v, _ := f.st.Get(slice, key).(float64)
	return v
}

func (f *fixture) str(slice, key string) string {
	v, _ := f.st.Get(slice, key).(string)
	return v
}

func TestStartRunResetsAndActivates(t *testing.T) {
	f := newFixture(t)
	runID := f.manager.StartRun("seed-1")
	if runID == "" {
		t.Fatalf("expected a run id")
	}
	if got := f.str(slices.Run, "runId"); got != runID {
		t.Fatalf("expected run id %q in the store, got %q", runID, got)
	}
	if active, _ := f.st.Get(slices.Run, "active").(bool); !active {
		t.Fatalf("expected run to be active")
	}
	if got := f.str(slices.Phase, "current"); got != slices.PhaseRunning {
		t.Fatalf("expected phase %q, got %q", slices.PhaseRunning, got)
	}
}

func TestScoreAddCommitsAndLogs(t *testing.T) {
	f := newFixture(t)
	f.manager.StartRun("seed")
	d := f.manager.Dispatcher()
	d.Dispatch(dispatch.Action{Type: dispatch.ActionScoreAdd, Payload: map[string]any{"amount": float64(100)}})
	d.Dispatch(dispatch.Action{Type: dispatch.ActionScoreAdd, Payload: map[string]any{"amount": float64(50)}})
	if got := f.num(slices.Run, "score"); got != 150 {
		t.Fatalf("expected score 150, got %v", got)
	}
	seen := 0
	for _, entry := range d.ActionLog() {
		if entry.Type == dispatch.ActionScoreAdd {
			seen++
		}
	}
	if seen != 2 {
		t.Fatalf("expected 2 score entries in the action log, got %d", seen)
	}
}

func TestKillChainFeedsRewards(t *testing.T) {
	f := newFixture(t)
	f.manager.StartRun("seed")
	f.manager.Dispatcher().Dispatch(dispatch.Action{
		Type:    dispatch.ActionWaveStart,
		Payload: map[string]any{"wave": float64(1), "enemies": float64(2)},
	})
	enemy := f.world.SpawnEnemy(entity.EnemySpec{Type: "grunt", Health: 10, Bounty: 5, XP: 30})

	if !f.manager.DamageEnemy(enemy.ID, 25, "test") {
		t.Fatalf("expected the hit to land")
	}

	want := map[string]float64{
		"kills": 1, "gold": 5, "score": 15,
	}
	got := map[string]float64{
		"kills": f.num(slices.Run, "kills"),
		"gold":  f.num(slices.Run, "gold"),
		"score": f.num(slices.Run, "score"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("run slice mismatch (-want +got):\n%s", diff)
	}
	if got := f.num(slices.Skills, "xp"); got != 30 {
		t.Fatalf("expected 30 xp, got %v", got)
	}
	if got := f.num(slices.Combat, "combo"); got != 1 {
		t.Fatalf("expected combo 1, got %v", got)
	}
	if got := f.num(slices.Wave, "remaining"); got != 1 {
		t.Fatalf("expected 1 enemy remaining, got %v", got)
	}
	if enemy.Alive {
		t.Fatalf("expected the enemy to be dead")
	}
}

func TestClearingWaveCompletesItAndAwardsShards(t *testing.T) {
	f := newFixture(t)
	f.manager.StartRun("seed")
	f.manager.Dispatcher().Dispatch(dispatch.Action{
		Type:    dispatch.ActionWaveStart,
		Payload: map[string]any{"wave": float64(5), "enemies": float64(1)},
	})
	enemy := f.world.SpawnEnemy(entity.EnemySpec{Type: "grunt", Health: 1, Bounty: 1, XP: 1})
	f.manager.DamageEnemy(enemy.ID, 10, "test")

	if got := f.str(slices.Wave, "state"); got != slices.WaveStateCleared {
		t.Fatalf("expected wave state %q, got %q", slices.WaveStateCleared, got)
	}
	if got := f.num(slices.Ascension, "shards"); got != 1 {
		t.Fatalf("expected 1 shard for wave 5, got %v", got)
	}
}

func TestLevelUpCascadesAcrossThresholds(t *testing.T) {
	f := newFixture(t)
	// 400 xp crosses level 1 (100) and level 2 (250), leaving 50.
	f.manager.GrantXP(400)
	if got := f.num(slices.Skills, "level"); got != 3 {
		t.Fatalf("expected level 3, got %v", got)
	}
	if got := f.num(slices.Skills, "xp"); got != 50 {
		t.Fatalf("expected 50 xp left over, got %v", got)
	}
	if got := f.num(slices.Skills, "points"); got != 2 {
		t.Fatalf("expected 2 skill points, got %v", got)
	}
}

func TestAttributeAllocationShiftsResolvedStat(t *testing.T) {
	f := newFixture(t)
	f.manager.GrantXP(100)
	if got := f.num(slices.Skills, "points"); got != 1 {
		t.Fatalf("expected 1 point after leveling, got %v", got)
	}
	if !f.manager.AllocateAttribute(slices.AttrFerocity) {
		t.Fatalf("expected the allocation to pass")
	}
	if got := f.manager.ResolveStat(skills.StatDamage); got != 10.4 {
		t.Fatalf("expected damage 10.4 after one ferocity point, got %v", got)
	}
	if f.manager.AllocateAttribute("luck") {
		t.Fatalf("expected unknown attribute to be refused")
	}
}

func TestCastRespectsCooldown(t *testing.T) {
	f := newFixture(t)
	f.manager.StartRun("seed")
	if !f.manager.EquipSkill("fireball", 1, nil) {
		t.Fatalf("expected fireball to equip")
	}
	if !f.manager.CastSkill("fireball", 100, 0) {
		t.Fatalf("expected the first cast to land")
	}
	if got := len(f.world.Projectiles()); got != 1 {
		t.Fatalf("expected 1 projectile, got %d", got)
	}
	if f.manager.CastSkill("fireball", 100, 0) {
		t.Fatalf("expected the second cast to be blocked by cooldown")
	}
	f.manager.Advance(3.0)
	if !f.manager.CastSkill("fireball", 100, 0) {
		t.Fatalf("expected the cast to pass once the cooldown expired")
	}
}

func TestCastWithoutPluginFallsBackToDefaultAttack(t *testing.T) {
	f := newFixture(t)
	f.manager.StartRun("seed")
	if !f.manager.CastSkill("basic_shot", 50, 50) {
		t.Fatalf("expected the fallback cast to land")
	}
	shots := f.world.Projectiles()
	if len(shots) != 1 {
		t.Fatalf("expected 1 projectile, got %d", len(shots))
	}
	if shots[0].Source != "default_attack" {
		t.Fatalf("expected a default attack, got source %q", shots[0].Source)
	}
	if shots[0].Damage != 10 {
		t.Fatalf("expected base damage 10, got %v", shots[0].Damage)
	}
}

func TestEquipRefusesUnknownSkill(t *testing.T) {
	f := newFixture(t)
	if f.manager.EquipSkill("no_such_skill", 1, nil) {
		t.Fatalf("expected an unknown skill to be refused")
	}
	if !f.log.contains("unknown skill") {
		t.Fatalf("expected a refusal log line, got %v", f.log.lines)
	}
}

func TestPlayerDeathEndsRun(t *testing.T) {
	f := newFixture(t)
	f.manager.StartRun("seed")
	for i := 0; i < 3; i++ {
		f.manager.DamagePlayer(1000, "boss")
	}
	if alive, _ := f.st.Get(slices.Player, "alive").(bool); alive {
		t.Fatalf("expected the player to be dead")
	}
	if active, _ := f.st.Get(slices.Run, "active").(bool); active {
		t.Fatalf("expected the run to be over")
	}
	if got := f.str(slices.Phase, "current"); got != slices.PhaseGameOver {
		t.Fatalf("expected phase %q, got %q", slices.PhaseGameOver, got)
	}
	if got := f.num(slices.Progression, "totalRuns"); got != 1 {
		t.Fatalf("expected 1 recorded run, got %v", got)
	}
}

func TestAuraReducesIncomingDamage(t *testing.T) {
	f := newFixture(t)
	f.manager.StartRun("seed")
	if !f.manager.EquipSkill("aegis_field", 3, nil) {
		t.Fatalf("expected aegis field to equip")
	}
	f.manager.DamagePlayer(40, "grunt")
	// rank 3 aura: 0.25 reduction, so 30 lands against 100 health.
	if got := f.num(slices.Player, "health"); got != 70 {
		t.Fatalf("expected health 70 after reduced hit, got %v", got)
	}
}

func TestAdvanceDrivesEntitiesAndCounts(t *testing.T) {
	f := newFixture(t)
	f.manager.StartRun("seed")
	f.world.SpawnEnemy(entity.EnemySpec{Type: "grunt", X: 500, Y: 0, Health: 10, Speed: 100})
	for i := 0; i < 30; i++ {
		f.manager.Advance(1.0 / 60)
	}
	enemies := f.world.Enemies()
	if len(enemies) != 1 {
		t.Fatalf("expected the enemy to survive, got %d", len(enemies))
	}
	if enemies[0].X >= 500 {
		t.Fatalf("expected the enemy to close on the player, still at %v", enemies[0].X)
	}
	if got := f.num(slices.Entities, "enemies"); got != 1 {
		t.Fatalf("expected synced enemy count 1, got %v", got)
	}
}

func TestResetRunClearsLiveState(t *testing.T) {
	f := newFixture(t)
	f.manager.StartRun("seed")
	f.manager.EquipSkill("rapid_fire", 2, nil)
	f.world.SpawnEnemy(entity.EnemySpec{Type: "grunt", Health: 10})
	f.manager.ResetRun()
	if got := len(f.manager.Engine().ActiveIDs()); got != 0 {
		t.Fatalf("expected no active skills after reset, got %d", got)
	}
	if got := len(f.world.Enemies()); got != 0 {
		t.Fatalf("expected no enemies after reset, got %d", got)
	}
	if active, _ := f.st.Get(slices.Run, "active").(bool); active {
		t.Fatalf("expected the run slice back at its initial state")
	}
}

func TestReequipFromSlicesRebuildsEngine(t *testing.T) {
	f := newFixture(t)
	f.st.Set(slices.Skills, map[string]any{
		"equipped": []any{"rapid_fire", "heavy_rounds"},
		"ranks": map[string]any{
			"rapid_fire":   float64(2),
			"heavy_rounds": float64(1),
		},
	})
	f.manager.ReequipFromSlices(nil)
	want := []string{"rapid_fire", "heavy_rounds"}
	if diff := cmp.Diff(want, f.manager.Engine().ActiveIDs()); diff != "" {
		t.Fatalf("active skill mismatch (-want +got):\n%s", diff)
	}
	if rank, _ := f.manager.Engine().Rank("rapid_fire"); rank != 2 {
		t.Fatalf("expected rapid_fire at rank 2, got %d", rank)
	}
}

func TestWaveDirectorRunsTheStateMachine(t *testing.T) {
	f := newFixture(t)
	f.manager.StartRun("seed")

	// Past the opening grace: wave 1 starts spawning.
	f.manager.Advance(2.0)
	if got := f.num(slices.Wave, "number"); got != 1 {
		t.Fatalf("expected wave 1, got %v", got)
	}
	if got := f.str(slices.Wave, "state"); got != slices.WaveStateSpawning {
		t.Fatalf("expected state %q, got %q", slices.WaveStateSpawning, got)
	}

	// One enemy arrives per staggered step until the budget is out.
	for i := 0; i < 6; i++ {
		f.manager.Advance(1.0)
	}
	if got := len(f.world.Enemies()); got != 6 {
		t.Fatalf("expected 6 spawned enemies, got %d", got)
	}
	if got := f.str(slices.Wave, "state"); got != slices.WaveStateActive {
		t.Fatalf("expected state %q, got %q", slices.WaveStateActive, got)
	}

	// Clearing every enemy completes the wave through the kill chain.
	for _, enemy := range f.world.Enemies() {
		f.manager.DamageEnemy(enemy.ID, 1000, "test")
	}
	if got := f.str(slices.Wave, "state"); got != slices.WaveStateCleared {
		t.Fatalf("expected state %q, got %q", slices.WaveStateCleared, got)
	}

	// After the intermission the director rolls wave 2.
	f.manager.Advance(3.5)
	if got := f.num(slices.Wave, "number"); got != 2 {
		t.Fatalf("expected wave 2, got %v", got)
	}
}

func TestWaveDirectorIdlesOutsideActiveRuns(t *testing.T) {
	f := newFixture(t)
	f.manager.Advance(10.0)
	if got := f.num(slices.Wave, "number"); got != 0 {
		t.Fatalf("expected no wave without a run, got %v", got)
	}
	if got := len(f.world.Enemies()); got != 0 {
		t.Fatalf("expected no enemies without a run, got %d", got)
	}
}

func TestAscendDraftActivatesModifier(t *testing.T) {
	f := newFixture(t)
	f.manager.Dispatcher().Dispatch(dispatch.Action{
		Type:    dispatch.ActionShardsAdd,
		Payload: map[string]any{"amount": float64(1)},
	})

	offered := f.manager.Ascend()
	if len(offered) != 3 {
		t.Fatalf("expected a 3-modifier offer, got %v", offered)
	}
	if got := f.num(slices.Ascension, "tier"); got != 1 {
		t.Fatalf("expected tier 1, got %v", got)
	}
	if got := f.num(slices.Ascension, "shards"); got != 0 {
		t.Fatalf("expected shards spent, got %v", got)
	}

	if !f.manager.ChooseAscension(offered[0]) {
		t.Fatalf("expected the offered modifier to be choosable")
	}
	want := []string{offered[0]}
	if diff := cmp.Diff(want, f.pool.ActiveIDs()); diff != "" {
		t.Fatalf("active modifier mismatch (-want +got):\n%s", diff)
	}
	if f.manager.ChooseAscension(offered[0]) {
		t.Fatalf("expected the closed offer to refuse a second choice")
	}
}

func TestAscendRefusedWithoutShardsOrMidRun(t *testing.T) {
	f := newFixture(t)
	if offered := f.manager.Ascend(); offered != nil {
		t.Fatalf("expected ascend to be refused without shards, got %v", offered)
	}

	f.manager.Dispatcher().Dispatch(dispatch.Action{
		Type:    dispatch.ActionShardsAdd,
		Payload: map[string]any{"amount": float64(5)},
	})
	f.manager.StartRun("seed")
	if offered := f.manager.Ascend(); offered != nil {
		t.Fatalf("expected ascend to be refused mid-run, got %v", offered)
	}
}

func TestRerollReplacesStandingOffer(t *testing.T) {
	f := newFixture(t)
	f.manager.Dispatcher().Dispatch(dispatch.Action{
		Type:    dispatch.ActionShardsAdd,
		Payload: map[string]any{"amount": float64(1)},
	})
	if offered := f.manager.Ascend(); len(offered) != 3 {
		t.Fatalf("expected an open offer, got %v", offered)
	}
	if rerolled := f.manager.RerollAscensions(); len(rerolled) != 3 {
		t.Fatalf("expected a fresh 3-modifier offer, got %v", rerolled)
	}
	if rerolled := func() []string {
		f.manager.ChooseAscension(f.pool.OfferedIDs()[0])
		return f.manager.RerollAscensions()
	}(); rerolled != nil {
		t.Fatalf("expected reroll to be refused without an open offer, got %v", rerolled)
	}
}

func TestEquipConfigOverridesPlayerTuning(t *testing.T) {
	f := newFixture(t)
	f.manager.StartRun("seed")
	cfg := map[string]any{"damageReduction": 0.5}
	if !f.manager.EquipSkill("aegis_field", 1, cfg) {
		t.Fatalf("expected aegis_field to equip")
	}

	f.manager.DamagePlayer(40, "test")
	if got := f.num(slices.Player, "health"); got != 80 {
		t.Fatalf("expected the equip config to halve the hit, health %v", got)
	}
}
