package gaze

// Smoother keeps the most recent labels in a fixed-capacity ring and reduces
// them to one label by majority vote.
type Smoother struct {
	buf   []Direction
	head  int // index of the oldest label
	count int
}

// NewSmoother creates a smoother holding capacity labels.
func NewSmoother(capacity int) *Smoother {
	return &Smoother{buf: make([]Direction, capacity)}
}

// Push appends a label, evicting the oldest when full.
func (s *Smoother) Push(d Direction) {
	if len(s.buf) == 0 {
		return
	}
	if s.count < len(s.buf) {
		s.buf[(s.head+s.count)%len(s.buf)] = d
		s.count++
		return
	}
	s.buf[s.head] = d
	s.head = (s.head + 1) % len(s.buf)
}

// Len is the number of labels held.
func (s *Smoother) Len() int {
	return s.count
}

// Cap is the window size.
func (s *Smoother) Cap() int {
	return len(s.buf)
}

// Labels returns a copy of the window, oldest first.
func (s *Smoother) Labels() []Direction {
	out := make([]Direction, s.count)
	for i := range out {
		out[i] = s.buf[(s.head+i)%len(s.buf)]
	}
	return out
}

// Current returns the majority label. It is Unknown until the window is
// full, and Unknown when the most frequent label occurs fewer than Cap/2
// times. Ties go to the label whose first occurrence is oldest in the window.
func (s *Smoother) Current() Direction {
	if len(s.buf) == 0 || s.count < len(s.buf) {
		return Unknown
	}

	counts := make(map[Direction]int, len(allDirections))
	best, bestCount := Unknown, 0
	for i := 0; i < s.count; i++ {
		d := s.buf[(s.head+i)%len(s.buf)]
		counts[d]++
	}
	for i := 0; i < s.count; i++ {
		d := s.buf[(s.head+i)%len(s.buf)]
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}

	if bestCount < len(s.buf)/2 {
		return Unknown
	}
	return best
}
