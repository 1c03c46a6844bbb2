package profile

import (
	"slices"
	"testing"
)

func TestMake_AppliesOptions(t *testing.T) {
	t.Parallel()

	got := Make(WithMode("cpu"), WithPath("/tmp/prof"), WithQuiet(true))
	want := Profiler{Mode: "cpu", Path: "/tmp/prof", Quiet: true}

	if got != want {
		t.Errorf("Make() = %+v, want %+v", got, want)
	}
}

func TestStart_NoMode_IsNoop(t *testing.T) {
	t.Parallel()

	s := Make(WithPath(t.TempDir())).Start()
	if _, ok := s.(ignore); !ok {
		t.Errorf("Start() without mode = %T, want no-op", s)
	}

	s.Stop()
}

func TestStart_UnknownMode_IsNoop(t *testing.T) {
	t.Parallel()

	s := Make(WithMode("bogus")).Start()
	if _, ok := s.(ignore); !ok {
		t.Errorf("Start() with unknown mode = %T, want no-op", s)
	}

	s.Stop()
}

func TestModes_Sorted(t *testing.T) {
	t.Parallel()

	if m := Modes(); !slices.IsSorted(m) {
		t.Errorf("Modes() not sorted: %v", m)
	}
}
