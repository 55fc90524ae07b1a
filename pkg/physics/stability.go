package physics

// stability keeps a ring buffer of the last per-node mean displacements and
// counts consecutive steps during which their sum stayed under threshold.
type stability struct {
	window []float64
	next   int
	filled int
	sum    float64
	calm   int
}

func newStability(size int) stability {
	return stability{window: make([]float64, size)}
}

func (s *stability) record(v, threshold float64) {
	s.sum -= s.window[s.next]
	s.window[s.next] = v
	s.sum += v
	s.next = (s.next + 1) % len(s.window)
	if s.filled < len(s.window) {
		s.filled++
	}

	// Rounding drift can leave a tiny negative residue.
	if s.sum < 0 {
		s.sum = 0
	}

	if s.filled == len(s.window) && s.sum < threshold {
		s.calm++
	} else {
		s.calm = 0
	}
}

func (s *stability) reset() {
	for i := range s.window {
		s.window[i] = 0
	}
	s.next, s.filled, s.sum, s.calm = 0, 0, 0, 0
}
