package ascension_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/diegofer25/neon-siege-sub003/internal/ascension"
	"github.com/diegofer25/neon-siege-sub003/internal/skills"
)

type testLog struct {
	lines []string
}

func (l *testLog) Printf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func smallCatalog() []ascension.Definition {
	return []ascension.Definition{
		{ID: "a", Weight: 1, Modifiers: []skills.Modifier{{Stat: skills.StatDamage, Op: skills.OpAdd, Value: 5}}},
		{ID: "b", Weight: 1, Modifiers: []skills.Modifier{{Stat: skills.StatDamage, Op: skills.OpMultiply, Value: 2}}},
		{ID: "c", Weight: 1},
	}
}

func TestOfferExcludesActive(t *testing.T) {
	pool := ascension.NewPool(ascension.Deps{Logger: &testLog{}, Rand: func() float64 { return 0 }, Catalog: smallCatalog()})

	offered := pool.Offer(2)
	if len(offered) != 2 {
		t.Fatalf("expected 2 offered, got %v", offered)
	}
	if !pool.Choose(offered[0]) {
		t.Fatalf("expected choose of offered id to succeed")
	}
	if got := pool.OfferedIDs(); len(got) != 0 {
		t.Fatalf("expected offer cleared after choose, got %v", got)
	}

	offered = pool.Offer(3)
	for _, id := range offered {
		if id == pool.ActiveIDs()[0] {
			t.Fatalf("active id %q offered again", id)
		}
	}
	if len(offered) != 2 {
		t.Fatalf("expected only 2 inactive candidates, got %v", offered)
	}
}

func TestChooseRefusesUnoffered(t *testing.T) {
	warns := &testLog{}
	pool := ascension.NewPool(ascension.Deps{Logger: warns, Catalog: smallCatalog()})
	if pool.Choose("a") {
		t.Fatalf("expected choose without an offer to be refused")
	}
	if len(warns.lines) == 0 {
		t.Fatalf("expected a logged refusal")
	}
}

func TestModifiersFoldInChooseOrder(t *testing.T) {
	pool := ascension.NewPool(ascension.Deps{Logger: &testLog{}, Rand: func() float64 { return 0 }, Catalog: smallCatalog()})
	pool.Offer(1)
	if !pool.Choose("a") {
		t.Fatalf("choose a failed; offered=%v", pool.OfferedIDs())
	}
	pool.Offer(1)
	if !pool.Choose("b") {
		t.Fatalf("choose b failed; offered=%v", pool.OfferedIDs())
	}

	agg := skills.FoldModifiers(nil, pool.Modifiers())
	if got := skills.ResolveStatValue(skills.StatDamage, 10, agg); got != 30 {
		t.Fatalf("expected (10+5)*2 = 30, got %v", got)
	}
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	pool := ascension.NewPool(ascension.Deps{Logger: &testLog{}, Rand: func() float64 { return 0 }, Catalog: smallCatalog()})
	pool.Offer(1)
	pool.Choose(pool.OfferedIDs()[0])
	pool.Offer(2)
	saved := pool.Save()

	other := ascension.NewPool(ascension.Deps{Logger: &testLog{}, Catalog: smallCatalog()})
	other.Restore(saved)
	if diff := cmp.Diff(saved, other.Save()); diff != "" {
		t.Fatalf("state did not round-trip (-want +got):\n%s", diff)
	}
}

func TestRestoreDropsUnknownIDs(t *testing.T) {
	warns := &testLog{}
	pool := ascension.NewPool(ascension.Deps{Logger: warns, Catalog: smallCatalog()})
	pool.Restore(ascension.State{ActiveModifiers: []string{"a", "gone"}, OfferedIDs: []string{"missing"}})
	if diff := cmp.Diff([]string{"a"}, pool.ActiveIDs()); diff != "" {
		t.Fatalf("unexpected active ids (-want +got):\n%s", diff)
	}
	if got := pool.OfferedIDs(); len(got) != 0 {
		t.Fatalf("expected unknown offered id dropped, got %v", got)
	}
	if len(warns.lines) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warns.lines)
	}
}

func TestDefaultCatalogIsWellFormed(t *testing.T) {
	seen := make(map[string]bool)
	for _, def := range ascension.DefaultCatalog() {
		if def.ID == "" {
			t.Fatalf("definition with empty id: %+v", def)
		}
		if seen[def.ID] {
			t.Fatalf("duplicate id %q", def.ID)
		}
		seen[def.ID] = true
	}
	if len(seen) < 4 {
		t.Fatalf("expected at least 4 shipped modifiers, got %d", len(seen))
	}
}
