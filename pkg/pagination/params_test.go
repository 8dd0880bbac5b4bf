package pagination

import (
	"testing"
	"time"
)

func TestParams_Key(t *testing.T) {
	after := time.Date(2020, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{
			name:   "empty",
			params: Params{},
			want:   "",
		},
		{
			name:   "sort only",
			params: Params{SortBy: SortFieldCreatedAt, SortDir: SortDescending},
			want:   "sortBy=createdAt:sortDir=descending",
		},
		{
			name:   "filters sorted",
			params: Params{Severity: []string{"LOW", "CRITICAL"}, Status: []string{"OPEN"}},
			want:   "severity=CRITICAL,LOW:status=OPEN",
		},
		{
			name:   "time filter",
			params: Params{RuleID: "rule.1", CreatedAtAfter: &after},
			want:   "ruleId=rule.1:createdAtAfter=2020-05-01T12:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParams_EqualIgnoresFilterOrder(t *testing.T) {
	a := Params{Severity: []string{"HIGH", "LOW"}}
	b := Params{Severity: []string{"LOW", "HIGH"}}

	if !a.Equal(b) {
		t.Error("params with reordered severities should be equal")
	}
	if a.Equal(Params{Severity: []string{"HIGH"}}) {
		t.Error("params with different severities should not be equal")
	}

	// Key must not mutate the caller's slice
	if a.Severity[0] != "HIGH" {
		t.Errorf("Severity was reordered: %v", a.Severity)
	}
}

func TestParams_IsEmpty(t *testing.T) {
	if !(Params{}).IsEmpty() {
		t.Error("zero params should be empty")
	}
	if (Params{NameContains: "root"}).IsEmpty() {
		t.Error("params with a filter should not be empty")
	}
}

func TestParseSortDir(t *testing.T) {
	tests := []struct {
		in      string
		want    SortDir
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "asc", want: SortAscending},
		{in: "ASCENDING", want: SortAscending},
		{in: " desc ", want: SortDescending},
		{in: "descending", want: SortDescending},
		{in: "sideways", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSortDir(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSortDir(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSortDir(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
