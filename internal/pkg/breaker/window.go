package breaker

// window is a count-based sliding window over the outcomes of the last N calls.
type window struct {
	outcomes []bool
	next     int
	size     int
	failures int
}

func newWindow(n int) *window {
	return &window{outcomes: make([]bool, n)}
}

func (w *window) record(failed bool) {
	if w.size == len(w.outcomes) {
		if w.outcomes[w.next] {
			w.failures--
		}
	} else {
		w.size++
	}
	w.outcomes[w.next] = failed
	if failed {
		w.failures++
	}
	w.next = (w.next + 1) % len(w.outcomes)
}

// failureRate is expressed as a percentage in [0, 100].
func (w *window) failureRate() float64 {
	if w.size == 0 {
		return 0
	}
	return float64(w.failures) * 100 / float64(w.size)
}

func (w *window) reset() {
	clear(w.outcomes)
	w.next, w.size, w.failures = 0, 0, 0
}
