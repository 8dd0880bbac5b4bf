package cache

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/alert-feed/pkg/pagination"
)

func TestCacheEntry_JSONRoundTrip(t *testing.T) {
	page := pagination.Page[testItem]{
		Items: []testItem{{ID: "alert-1", Rank: 3}, {ID: "alert-2", Rank: 1}},
		Token: "eyJpZCI6ImFsZXJ0LTIifQ==",
	}
	entry, err := PageToEntry(page, time.Minute)
	if err != nil {
		t.Fatalf("PageToEntry failed: %v", err)
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	// Items are stored inline, not as a base64 string
	if !bytes.Contains(raw, []byte(`"data":[{"id":"alert-1","rank":3},{"id":"alert-2","rank":1}]`)) {
		t.Errorf("items not embedded as JSON: %s", raw)
	}

	var decoded CacheEntry
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Token != page.Token {
		t.Errorf("Token = %q, want %q", decoded.Token, page.Token)
	}
	if decoded.ItemCount != 2 {
		t.Errorf("ItemCount = %d, want 2", decoded.ItemCount)
	}
	if !decoded.Expires.Equal(entry.Expires) {
		t.Errorf("Expires = %v, want %v", decoded.Expires, entry.Expires)
	}

	back, err := EntryToPage[testItem](&decoded)
	if err != nil {
		t.Fatalf("EntryToPage failed: %v", err)
	}
	if !back.HasMore() {
		t.Error("page with token must report more pages")
	}
	if len(back.Items) != 2 || back.Items[1].ID != "alert-2" {
		t.Errorf("Items = %+v", back.Items)
	}
}

func TestCacheEntry_LastPageOmitsToken(t *testing.T) {
	entry, err := PageToEntry(pagination.Page[testItem]{}, time.Minute)
	if err != nil {
		t.Fatalf("PageToEntry failed: %v", err)
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(raw), `"token"`) {
		t.Errorf("last page must not carry a token field: %s", raw)
	}
	if !strings.Contains(string(raw), `"data":[]`) || !strings.Contains(string(raw), `"item_count":0`) {
		t.Errorf("empty page must encode as data [] with item_count 0: %s", raw)
	}

	var decoded CacheEntry
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	page, err := EntryToPage[testItem](&decoded)
	if err != nil {
		t.Fatalf("EntryToPage failed: %v", err)
	}
	if page.HasMore() {
		t.Errorf("empty last page reports more pages (token %q)", page.Token)
	}
}

func TestCacheEntry_Expiry(t *testing.T) {
	tests := []struct {
		name        string
		ttl         time.Duration
		age         time.Duration
		wantExpired bool
	}{
		{name: "fresh page", ttl: 30 * time.Second, age: 0, wantExpired: false},
		{name: "page past its ttl", ttl: 30 * time.Second, age: 31 * time.Second, wantExpired: true},
		{name: "default ttl still valid", ttl: 0, age: DefaultTTL / 2, wantExpired: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := PageToEntry(pagination.Page[testItem]{Token: "p1"}, tt.ttl)
			if err != nil {
				t.Fatalf("PageToEntry failed: %v", err)
			}
			entry.Expires = entry.Expires.Add(-tt.age)
			entry.CachedAt = entry.CachedAt.Add(-tt.age)

			if got := entry.IsExpired(); got != tt.wantExpired {
				t.Errorf("IsExpired() = %v, want %v", got, tt.wantExpired)
			}
			if tt.wantExpired && entry.TTL() != 0 {
				t.Errorf("TTL() = %v, want 0 for an expired page", entry.TTL())
			}
			if !tt.wantExpired && entry.TTL() <= 0 {
				t.Errorf("TTL() = %v, want > 0 for a fresh page", entry.TTL())
			}
		})
	}
}
