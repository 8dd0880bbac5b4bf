package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/Sternrassler/alert-feed/pkg/pagination"
)

type testItem struct {
	ID   string `json:"id"`
	Rank int    `json:"rank"`
}

func TestPageToEntry(t *testing.T) {
	page := pagination.Page[testItem]{
		Items: []testItem{{ID: "a", Rank: 1}, {ID: "b", Rank: 2}},
		Token: "next",
	}

	entry, err := PageToEntry(page, time.Minute)
	if err != nil {
		t.Fatalf("PageToEntry failed: %v", err)
	}

	if entry.ItemCount != 2 {
		t.Errorf("ItemCount = %d, want 2", entry.ItemCount)
	}
	if entry.Token != "next" {
		t.Errorf("Token = %q, want next", entry.Token)
	}
	if ttl := entry.TTL(); ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %v, want (0, 1m]", ttl)
	}

	decoded, err := EntryToPage[testItem](entry)
	if err != nil {
		t.Fatalf("EntryToPage failed: %v", err)
	}
	if len(decoded.Items) != 2 || decoded.Items[1].ID != "b" || decoded.Token != "next" {
		t.Errorf("decoded page = %+v", decoded)
	}
}

func TestPageToEntry_DefaultTTL(t *testing.T) {
	entry, err := PageToEntry(pagination.Page[testItem]{}, 0)
	if err != nil {
		t.Fatalf("PageToEntry failed: %v", err)
	}

	if ttl := entry.TTL(); ttl <= DefaultTTL-time.Second || ttl > DefaultTTL {
		t.Errorf("TTL = %v, want about %v", ttl, DefaultTTL)
	}
}

func TestPageToEntry_EmptyLastPage(t *testing.T) {
	entry, err := PageToEntry(pagination.Page[testItem]{}, time.Minute)
	if err != nil {
		t.Fatalf("PageToEntry failed: %v", err)
	}
	if string(entry.Data) != "[]" {
		t.Errorf("Data = %s, want []", entry.Data)
	}

	page, err := EntryToPage[testItem](entry)
	if err != nil {
		t.Fatalf("EntryToPage failed: %v", err)
	}
	if page.HasMore() {
		t.Error("empty token must decode to a last page")
	}
}

func TestEntryToPage_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		entry *CacheEntry
	}{
		{name: "nil entry", entry: nil},
		{name: "not json", entry: &CacheEntry{Data: []byte("nope")}},
		{name: "count mismatch", entry: &CacheEntry{Data: []byte(`[{"id":"a"}]`), ItemCount: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EntryToPage[testItem](tt.entry)
			if !errors.Is(err, ErrInvalidEntry) {
				t.Errorf("expected ErrInvalidEntry, got %v", err)
			}
		})
	}
}
