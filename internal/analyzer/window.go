package analyzer

// window is a fixed-capacity ring buffer of the most recent raw angles.
type window struct {
	buf   []float64
	start int
	n     int
}

func newWindow(size int) *window {
	return &window{buf: make([]float64, size)}
}

// push appends v, overwriting the oldest value once the window is full.
func (w *window) push(v float64) {
	if w.n < len(w.buf) {
		w.buf[(w.start+w.n)%len(w.buf)] = v
		w.n++
		return
	}
	w.buf[w.start] = v
	w.start = (w.start + 1) % len(w.buf)
}

// values copies the window into dst, oldest first, and returns it.
func (w *window) values(dst []float64) []float64 {
	dst = dst[:0]
	for i := 0; i < w.n; i++ {
		dst = append(dst, w.buf[(w.start+i)%len(w.buf)])
	}
	return dst
}

func (w *window) len() int { return w.n }

func (w *window) capacity() int { return len(w.buf) }
