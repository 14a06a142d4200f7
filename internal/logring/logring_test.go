package logring

import (
	"fmt"
	"testing"

	"sentinel/internal/domain"
)

func entry(n int, level domain.LogLevel) domain.LogEntry {
	return domain.LogEntry{ID: fmt.Sprintf("log-%d", n), Level: level, Message: fmt.Sprintf("entry %d", n)}
}

func TestRingEviction(t *testing.T) {
	r := New(1000)
	for i := 1; i <= 1001; i++ {
		evicted := r.Append(entry(i, domain.LogInfo))
		if evicted != (i == 1001) {
			t.Fatalf("append %d: unexpected eviction=%v", i, evicted)
		}
	}

	if r.Len() != 1000 {
		t.Fatalf("expected 1000 entries, got %d", r.Len())
	}
	all := r.Snapshot()
	if all[0].ID != "log-2" {
		t.Errorf("expected oldest entry log-2, got %s", all[0].ID)
	}
	if all[len(all)-1].ID != "log-1001" {
		t.Errorf("expected newest entry log-1001, got %s", all[len(all)-1].ID)
	}
}

func TestRingRecent(t *testing.T) {
	r := New(5)
	for i := 1; i <= 8; i++ {
		r.Append(entry(i, domain.LogInfo))
	}

	got := r.Recent(2)
	if len(got) != 2 || got[0].ID != "log-7" || got[1].ID != "log-8" {
		t.Errorf("unexpected recent entries: %+v", got)
	}
	if all := r.Recent(50); len(all) != 5 {
		t.Errorf("expected Recent to clamp to 5, got %d", len(all))
	}
	if empty := New(3).Recent(10); len(empty) != 0 {
		t.Errorf("expected empty ring to return nothing, got %d", len(empty))
	}
}

func TestRingQuery(t *testing.T) {
	r := New(10)
	levels := []domain.LogLevel{domain.LogInfo, domain.LogError, domain.LogInfo, domain.LogSuccess, domain.LogError}
	for i, l := range levels {
		r.Append(entry(i, l))
	}

	tests := []struct {
		name   string
		filter Filter
		ids    []string
	}{
		{"all", Filter{}, []string{"log-0", "log-1", "log-2", "log-3", "log-4"}},
		{"errors", Filter{Level: domain.LogError}, []string{"log-1", "log-4"}},
		{"limit", Filter{Limit: 2}, []string{"log-3", "log-4"}},
		{"level and limit", Filter{Level: domain.LogInfo, Limit: 1}, []string{"log-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Query(tt.filter)
			if len(got) != len(tt.ids) {
				t.Fatalf("expected %d entries, got %d", len(tt.ids), len(got))
			}
			for i, id := range tt.ids {
				if got[i].ID != id {
					t.Errorf("entry %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}
}
