package organizer

import (
	"testing"
)

func TestParseQCStatus(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want QCStatus
	}{
		{
			name: "passed",
			raw:  "passed",
			want: StatusPassed,
		},
		{
			name: "failed",
			raw:  "failed",
			want: StatusFailed,
		},
		{
			name: "pending",
			raw:  "pending",
			want: StatusPending,
		},
		{
			name: "unknown",
			raw:  "unknown",
			want: StatusUnknown,
		},
		{
			name: "empty means never evaluated",
			raw:  "",
			want: StatusUnknown,
		},
		{
			name: "whitespace only",
			raw:  "   ",
			want: StatusUnknown,
		},
		{
			name: "uppercase passed",
			raw:  "PASSED",
			want: StatusPassed,
		},
		{
			name: "mixed case failed",
			raw:  "Failed",
			want: StatusFailed,
		},
		{
			name: "surrounding whitespace",
			raw:  "  passed  ",
			want: StatusPassed,
		},
		{
			name: "unrecognized value treated as in flight",
			raw:  "queued",
			want: StatusPending,
		},
		{
			name: "in_review treated as in flight",
			raw:  "in_review",
			want: StatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQCStatus(tt.raw)
			if got != tt.want {
				t.Errorf("ParseQCStatus(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestQCStatusTerminal(t *testing.T) {
	tests := []struct {
		status QCStatus
		want   bool
	}{
		{StatusPassed, true},
		{StatusFailed, true},
		{StatusPending, false},
		{StatusUnknown, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNodeKindDroppable(t *testing.T) {
	tests := []struct {
		kind NodeKind
		want bool
	}{
		{KindRoot, true},
		{KindFolder, true},
		{KindDocument, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.Droppable(); got != tt.want {
				t.Errorf("Droppable() = %v, want %v", got, tt.want)
			}
		})
	}
}
