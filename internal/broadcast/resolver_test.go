package broadcast

import (
	"context"
	"errors"
	"testing"
)

// mockDirectory implements UserDirectory.
type mockDirectory struct {
	rangeFn func(start, end int64) ([]int64, error)
	testFn  func(flag string) ([]int64, error)
}

func (m *mockDirectory) IDsInRange(_ context.Context, start, end int64) ([]int64, error) {
	if m.rangeFn != nil {
		return m.rangeFn(start, end)
	}
	return nil, nil
}

func (m *mockDirectory) TestIDs(_ context.Context, flag string) ([]int64, error) {
	if m.testFn != nil {
		return m.testFn(flag)
	}
	return nil, nil
}

func TestResolve_All(t *testing.T) {
	var gotStart, gotEnd int64
	dir := &mockDirectory{rangeFn: func(start, end int64) ([]int64, error) {
		gotStart, gotEnd = start, end
		return []int64{1, 2}, nil
	}}
	r := NewResolver(dir)

	ids, err := r.Resolve(context.Background(), Selection{Mode: ModeAll})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("ids = %v, want 2 entries", ids)
	}
	if gotStart != 0 {
		t.Errorf("start = %d, want 0 (epoch)", gotStart)
	}
	if gotEnd == 0 {
		t.Error("end = 0, want current time")
	}
}

func TestResolve_RangePassesInclusiveBounds(t *testing.T) {
	var gotStart, gotEnd int64
	dir := &mockDirectory{rangeFn: func(start, end int64) ([]int64, error) {
		gotStart, gotEnd = start, end
		return nil, nil
	}}
	r := NewResolver(dir)

	ids, err := r.Resolve(context.Background(), Selection{Mode: ModeRange, Start: 1000, End: 2000})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	// Empty result is valid, not an error.
	if len(ids) != 0 {
		t.Errorf("ids = %v, want empty", ids)
	}
	if gotStart != 1000 || gotEnd != 2000 {
		t.Errorf("bounds = [%d, %d], want [1000, 2000]", gotStart, gotEnd)
	}
}

func TestResolve_Cohort(t *testing.T) {
	dir := &mockDirectory{testFn: func(flag string) ([]int64, error) {
		if flag != "test_user" {
			t.Errorf("flag = %q, want test_user", flag)
		}
		return []int64{10, 20, 30}, nil
	}}
	r := NewResolver(dir)

	ids, err := r.Resolve(context.Background(), Selection{Mode: ModeCohort, Flag: "test_user"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(ids) != 3 {
		t.Errorf("ids = %v, want 3 entries", ids)
	}
}

func TestResolve_UnknownMode(t *testing.T) {
	r := NewResolver(&mockDirectory{})

	_, err := r.Resolve(context.Background(), Selection{Mode: "bogus"})
	if !errors.Is(err, ErrUnknownMode) {
		t.Errorf("Resolve() error = %v, want ErrUnknownMode", err)
	}
}

func TestParseManualIDs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int64
		wantErr error
	}{
		{
			name:  "mixed separators",
			input: "123 456,789\n111",
			want:  []int64{123, 456, 789, 111},
		},
		{
			name:    "no integers",
			input:   "abc def",
			wantErr: ErrNoValidIDs,
		},
		{
			name:  "junk tokens skipped",
			input: "12x 34, abc\n56",
			want:  []int64{34, 56},
		},
		{
			name:  "duplicates kept",
			input: "7 7 7",
			want:  []int64{7, 7, 7},
		},
		{
			name:  "negative chat ids",
			input: "-1001234, 42",
			want:  []int64{-1001234, 42},
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: ErrNoValidIDs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseManualIDs(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseManualIDs() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseManualIDs() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseManualIDs() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("ParseManualIDs()[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}
