package gaze

import (
	"reflect"
	"testing"
)

func fill(s *Smoother, labels ...Direction) {
	for _, d := range labels {
		s.Push(d)
	}
}

func repeat(d Direction, n int) []Direction {
	out := make([]Direction, n)
	for i := range out {
		out[i] = d
	}
	return out
}

func TestSmoother_UnknownUntilFull(t *testing.T) {
	s := NewSmoother(20)
	for i := 0; i < 19; i++ {
		s.Push(Center)
		if got := s.Current(); got != Unknown {
			t.Fatalf("after %d pushes got %v, want UNKNOWN", i+1, got)
		}
	}
	s.Push(Center)
	if got := s.Current(); got != Center {
		t.Errorf("full window got %v, want CENTER", got)
	}
}

func TestSmoother_MajorityThreshold(t *testing.T) {
	tests := []struct {
		name   string
		labels []Direction
		want   Direction
	}{
		{
			name: "11 of 20",
			labels: append(repeat(Center, 11),
				Left, Left, Left, Right, Right, Right, Up, Up, Down),
			want: Center,
		},
		{
			name: "10 of 20 is enough",
			labels: append(repeat(Up, 10),
				Left, Left, Left, Right, Right, Right, Center, Center, Down, NoFace),
			want: Up,
		},
		{
			name: "9 of 20 is not",
			labels: append(repeat(Center, 9),
				Left, Left, Left, Right, Right, Right, Up, Up, Down, Down, NoFace),
			want: Unknown,
		},
		{
			name:   "no face majority",
			labels: append(repeat(NoFace, 15), repeat(Center, 5)...),
			want:   NoFace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.labels) != 20 {
				t.Fatalf("bad fixture: %d labels", len(tt.labels))
			}
			s := NewSmoother(20)
			fill(s, tt.labels...)
			if got := s.Current(); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSmoother_TieGoesToOldestFirstOccurrence(t *testing.T) {
	s := NewSmoother(4)
	fill(s, Left, Right, Right, Left)
	if got := s.Current(); got != Left {
		t.Errorf("got %v, want LEFT", got)
	}

	s = NewSmoother(4)
	fill(s, Right, Left, Left, Right)
	if got := s.Current(); got != Right {
		t.Errorf("got %v, want RIGHT", got)
	}
}

func TestSmoother_EvictsOldest(t *testing.T) {
	s := NewSmoother(3)
	fill(s, Up, Down, Left, Right)

	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	want := []Direction{Down, Left, Right}
	if got := s.Labels(); !reflect.DeepEqual(got, want) {
		t.Errorf("Labels = %v, want %v", got, want)
	}

	// Tie-break follows the window, not insertion history.
	if got := s.Current(); got != Down {
		t.Errorf("got %v, want DOWN", got)
	}
}

func TestSmoother_MajorityShiftsWithWindow(t *testing.T) {
	s := NewSmoother(6)
	fill(s, repeat(Left, 6)...)
	if s.Current() != Left {
		t.Fatalf("got %v, want LEFT", s.Current())
	}
	fill(s, repeat(Up, 4)...)
	if got := s.Current(); got != Up {
		t.Errorf("got %v, want UP", got)
	}
}
