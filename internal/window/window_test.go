package window

import (
	"errors"
	"sync"
	"testing"
)

// stubLiveness returns a LivenessChecker that reports the given window ids as live.
func stubLiveness(live ...string) LivenessChecker {
	return func() (map[string]bool, error) {
		m := make(map[string]bool, len(live))
		for _, id := range live {
			m[id] = true
		}
		return m, nil
	}
}

func TestRegisterAndQuery(t *testing.T) {
	tr := New(nil)
	tr.Register("w1", "g1", "popout://g1")
	tr.Register("w2", "g2", "")

	if tr.Count() != 2 {
		t.Errorf("Count() = %d, want 2", tr.Count())
	}
	if g, ok := tr.GroupFor("w1"); !ok || g != "g1" {
		t.Errorf("GroupFor(w1) = (%q, %v), want (g1, true)", g, ok)
	}
	if w, ok := tr.WindowFor("g2"); !ok || w != "w2" {
		t.Errorf("WindowFor(g2) = (%q, %v), want (w2, true)", w, ok)
	}
	if _, ok := tr.GroupFor("nope"); ok {
		t.Error("GroupFor(nope) found a window")
	}

	all := tr.All()
	if len(all) != 2 || all[0].WindowID != "w1" || all[1].WindowID != "w2" {
		t.Fatalf("All() = %+v, want w1, w2", all)
	}
	if all[0].URL != "popout://g1" {
		t.Errorf("All()[0].URL = %q", all[0].URL)
	}
	if all[0].OpenedAt.IsZero() {
		t.Error("OpenedAt not set")
	}
}

func TestUnregister(t *testing.T) {
	tr := New(nil)
	tr.Register("w1", "g1", "")
	tr.Register("w2", "g2", "")

	if !tr.Unregister("w1") {
		t.Error("Unregister(w1) returned false, want true")
	}
	if tr.Unregister("w1") {
		t.Error("second Unregister(w1) returned true")
	}
	id, ok := tr.UnregisterGroup("g2")
	if !ok || id != "w2" {
		t.Errorf("UnregisterGroup(g2) = (%q, %v), want (w2, true)", id, ok)
	}
	if tr.Count() != 0 {
		t.Errorf("Count() = %d, want 0", tr.Count())
	}
}

func TestPrune(t *testing.T) {
	tr := New(stubLiveness("w2"))
	tr.Register("w1", "g1", "")
	tr.Register("w2", "g2", "")
	tr.Register("w3", "g3", "")

	pruned, err := tr.Prune()
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if len(pruned) != 2 || pruned[0].GroupID != "g1" || pruned[1].GroupID != "g3" {
		t.Errorf("Prune() = %+v, want g1 and g3", pruned)
	}
	if tr.Count() != 1 {
		t.Errorf("Count() after prune = %d, want 1", tr.Count())
	}
}

func TestPrune_NilLivenessIsNoop(t *testing.T) {
	tr := New(nil)
	tr.Register("w1", "g1", "")
	pruned, err := tr.Prune()
	if err != nil || pruned != nil {
		t.Errorf("Prune() = (%v, %v), want (nil, nil)", pruned, err)
	}
	if tr.Count() != 1 {
		t.Errorf("Count() = %d, want 1", tr.Count())
	}
}

func TestPrune_LivenessError(t *testing.T) {
	tr := New(func() (map[string]bool, error) { return nil, errors.New("host gone") })
	tr.Register("w1", "g1", "")
	if _, err := tr.Prune(); err == nil {
		t.Error("Prune() error = nil, want error")
	}
	if tr.Count() != 1 {
		t.Errorf("Count() = %d, want 1 (nothing pruned on error)", tr.Count())
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := New(stubLiveness())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			tr.Register(id, "g"+id, "")
			tr.GroupFor(id)
			tr.All()
		}(i)
	}
	wg.Wait()
	if tr.Count() != 20 {
		t.Errorf("Count() = %d, want 20", tr.Count())
	}
	pruned, _ := tr.Prune()
	if len(pruned) != 20 {
		t.Errorf("Prune() removed %d, want 20", len(pruned))
	}
}
