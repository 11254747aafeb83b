package cmap

import (
	"fmt"
	"sync"
	"testing"
)

func TestNewWithShards_RoundsToPowerOfTwo(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultShardCount},
		{-4, DefaultShardCount},
		{3, DefaultShardCount},
		{1, 1},
		{8, 8},
		{64, 64},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.in), func(t *testing.T) {
			m := NewWithShards[string, int](tt.in)
			if len(m.shards) != tt.want {
				t.Errorf("shard count = %d, want %d", len(m.shards), tt.want)
			}
		})
	}
}

func TestMap_SetGet(t *testing.T) {
	m := New[string, int]()

	m.Set("room:alpha", 2)
	m.Set("room:beta", 5)
	m.Set("room:alpha", 3) // overwrite

	if val, ok := m.Get("room:alpha"); !ok || val != 3 {
		t.Errorf("Get(room:alpha) = (%d, %v), want (3, true)", val, ok)
	}
	if val, ok := m.Get("room:beta"); !ok || val != 5 {
		t.Errorf("Get(room:beta) = (%d, %v), want (5, true)", val, ok)
	}
	if _, ok := m.Get("room:gone"); ok {
		t.Error("Get on an absent key should report false")
	}
}

func TestMap_DeleteAndHas(t *testing.T) {
	m := New[string, int]()

	m.Set("room:alpha", 1)
	if !m.Has("room:alpha") {
		t.Error("Has(room:alpha) = false, want true")
	}

	m.Delete("room:alpha")
	if m.Has("room:alpha") {
		t.Error("key should be gone after Delete")
	}

	// Deleting an absent key is a no-op.
	m.Delete("room:alpha")
}

func TestMap_Pop(t *testing.T) {
	m := New[string, int]()
	m.Set("room:alpha", 7)

	if val, ok := m.Pop("room:alpha"); !ok || val != 7 {
		t.Errorf("Pop() = (%d, %v), want (7, true)", val, ok)
	}
	if m.Has("room:alpha") {
		t.Error("key should be gone after Pop")
	}
	if _, ok := m.Pop("room:alpha"); ok {
		t.Error("second Pop should report false")
	}
}

func TestMap_GetOrSet(t *testing.T) {
	m := New[string, int]()

	if val, existed := m.GetOrSet("room:alpha", 10); existed || val != 10 {
		t.Errorf("GetOrSet(new) = (%d, %v), want (10, false)", val, existed)
	}
	if val, existed := m.GetOrSet("room:alpha", 99); !existed || val != 10 {
		t.Errorf("GetOrSet(existing) = (%d, %v), want (10, true)", val, existed)
	}
}

func TestMap_Upsert(t *testing.T) {
	m := New[string, int]()

	got := m.Upsert("room:alpha", 1, func(existing int, exists bool) int {
		if exists {
			return existing + 1
		}
		return 1
	})
	if got != 1 {
		t.Errorf("Upsert(new) = %d, want 1", got)
	}

	got = m.Upsert("room:alpha", 0, func(existing int, exists bool) int {
		if exists {
			return existing + 1
		}
		return 0
	})
	if got != 2 {
		t.Errorf("Upsert(existing) = %d, want 2", got)
	}
}

func TestMap_UpsertAtomicUnderContention(t *testing.T) {
	m := New[string, int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				m.Upsert("counter", 0, func(existing int, exists bool) int {
					return existing + 1
				})
			}
		}()
	}
	wg.Wait()

	if val, _ := m.Get("counter"); val != 1000 {
		t.Errorf("counter = %d, want 1000", val)
	}
}

func TestMap_CountAndClear(t *testing.T) {
	m := New[string, int]()

	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}

	for i := 0; i < 40; i++ {
		m.Set(fmt.Sprintf("room:%d", i), i)
	}
	if m.Count() != 40 {
		t.Errorf("Count() = %d, want 40", m.Count())
	}

	m.Clear()
	if m.Count() != 0 {
		t.Errorf("Count() after Clear = %d, want 0", m.Count())
	}
}

func TestMap_ComparableKeyTypes(t *testing.T) {
	byInt := New[int, string]()
	byInt.Set(42, "answer")
	if val, ok := byInt.Get(42); !ok || val != "answer" {
		t.Errorf("Get(42) = (%q, %v), want (\"answer\", true)", val, ok)
	}

	type member struct {
		Room   string
		Client string
	}
	byStruct := New[member, int]()
	byStruct.Set(member{"alpha", "c1"}, 1)
	if val, ok := byStruct.Get(member{"alpha", "c1"}); !ok || val != 1 {
		t.Errorf("struct key lookup = (%d, %v), want (1, true)", val, ok)
	}
}

func TestMap_ConcurrentMixedOps(t *testing.T) {
	m := New[int, int]()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				key := base*500 + j
				m.Set(key, j)
				m.Get(key)
				m.Has(key)
			}
		}(i)
	}
	wg.Wait()

	if m.Count() != 32*500 {
		t.Errorf("Count() = %d, want %d", m.Count(), 32*500)
	}
}
