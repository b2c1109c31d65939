package rundiff

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type call struct {
	Offset int
	Run    []byte
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		x, y []byte
		want []call
	}{
		{
			name: "empty",
		},
		{
			name: "identical",
			x:    []byte{1, 2, 3},
			y:    []byte{1, 2, 3},
		},
		{
			name: "single-element",
			x:    []byte{5},
			y:    []byte{7},
			want: []call{{0, []byte{7}}},
		},
		{
			name: "all-different",
			x:    []byte{0, 0, 0},
			y:    []byte{1, 1, 1},
			want: []call{{0, []byte{1, 1, 1}}},
		},
		{
			name: "run-at-start",
			x:    []byte{0, 0, 0, 0, 0, 0},
			y:    []byte{1, 2, 3, 0, 0, 0},
			want: []call{{0, []byte{1, 2, 3}}},
		},
		{
			name: "run-in-middle",
			x:    []byte{0, 0, 0, 0, 0, 0},
			y:    []byte{0, 0, 1, 2, 0, 0},
			want: []call{{2, []byte{1, 2}}},
		},
		{
			name: "run-at-end",
			x:    []byte{0, 0, 1, 1, 1, 1, 1},
			y:    []byte{0, 0, 1, 1, 1, 1, 0},
			want: []call{{6, []byte{0}}},
		},
		{
			name: "alternating-singles",
			x:    []byte{0, 1, 0, 1, 0},
			y:    []byte{0, 0, 0, 0, 0},
			want: []call{{1, []byte{0}}, {3, []byte{0}}},
		},
		{
			name: "multiple-runs",
			x:    []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
			y:    []byte{0, 0, 1, 2, 0, 0, 0, 3, 4, 5},
			want: []call{{2, []byte{1, 2}}, {7, []byte{3, 4, 5}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []call
			Diff(tt.x, tt.y, func(offset int, run []byte) {
				got = append(got, call{offset, run})
			})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Diff reported different runs (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestDiffRunsAliasTarget(t *testing.T) {
	x := []byte{0, 0, 0, 0}
	y := []byte{0, 9, 9, 0}
	Diff(x, y, func(offset int, run []byte) {
		if len(run) == 0 {
			t.Fatal("Diff reported an empty run")
		}
		if &run[0] != &y[offset] {
			t.Errorf("run at offset %d does not alias y", offset)
		}
	})
}

// TestDiffReconstructsTarget checks the defining property on random inputs:
// overwriting a copy of x with the reported runs at their offsets yields
// exactly y, runs are maximal, and offsets are strictly increasing.
func TestDiffReconstructsTarget(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 1000 {
		n := rng.IntN(300)
		x := make([]byte, n)
		y := make([]byte, n)
		for i := range x {
			x[i] = byte(rng.IntN(4))
			y[i] = byte(rng.IntN(4))
		}

		got := slices.Clone(x)
		prevEnd := -1 // end of the previous run, exclusive
		Diff(x, y, func(offset int, run []byte) {
			if offset <= prevEnd {
				t.Fatalf("run at offset %d starts at or before end of previous run %d", offset, prevEnd)
			}
			if x[offset] == y[offset] || x[offset+len(run)-1] == y[offset+len(run)-1] {
				t.Fatalf("run [%d, %d) has a matching boundary element", offset, offset+len(run))
			}
			if offset > 0 && x[offset-1] != y[offset-1] {
				t.Fatalf("run at offset %d is not maximal, previous element also differs", offset)
			}
			copy(got[offset:], run)
			prevEnd = offset + len(run)
		})
		if !bytes.Equal(got, y) {
			t.Fatalf("applying runs to x did not reconstruct y:\nx = %v\ny = %v\ngot = %v", x, y, got)
		}
	}
}

func TestDiffLengthMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Diff with mismatched lengths did not panic")
		}
	}()
	Diff([]byte{1, 2}, []byte{1}, func(int, []byte) {})
}

func TestDiffFunc(t *testing.T) {
	x := []string{"foo", "Bar", "baz"}
	y := []string{"FOO", "bar", "quux"}

	var got []string
	DiffFunc(x, y, strings.EqualFold, func(offset int, run []string) {
		got = append(got, run...)
	})
	want := []string{"quux"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DiffFunc reported different runs (-want, +got):\n%s", diff)
	}
}

func TestTryDiff(t *testing.T) {
	x := []byte{0, 0, 0, 0, 0, 0}
	y := []byte{1, 0, 2, 0, 3, 0}

	errBoom := errors.New("boom")
	calls := 0
	err := TryDiff(x, y, func(offset int, run []byte) error {
		calls++
		if offset == 2 {
			return errBoom
		}
		return nil
	})
	if err != errBoom {
		t.Errorf("TryDiff returned %v, want %v", err, errBoom)
	}
	if calls != 2 {
		t.Errorf("TryDiff made %d calls before stopping, want 2", calls)
	}
}

func TestTryDiffNoError(t *testing.T) {
	x := []byte{0, 1}
	y := []byte{1, 1}
	if err := TryDiff(x, y, func(int, []byte) error { return nil }); err != nil {
		t.Errorf("TryDiff returned %v, want nil", err)
	}
}

func TestAll(t *testing.T) {
	x := []byte{0, 0, 0, 0, 0}
	y := []byte{1, 0, 2, 2, 0}

	var got []call
	for offset, run := range All(x, y) {
		got = append(got, call{offset, run})
	}
	want := []call{{0, []byte{1}}, {2, []byte{2, 2}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("All yielded different runs (-want, +got):\n%s", diff)
	}
}

func TestAllEarlyBreak(t *testing.T) {
	x := []byte{0, 0, 0, 0, 0}
	y := []byte{1, 0, 2, 0, 3}

	var got []call
	for offset, run := range All(x, y) {
		got = append(got, call{offset, run})
		break
	}
	want := []call{{0, []byte{1}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("All yielded different runs (-want, +got):\n%s", diff)
	}
}
