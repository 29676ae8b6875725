package presence

// HistoryCapacity is the number of public messages kept for late joiners and
// the history endpoint.
const HistoryCapacity = 100

// History is a fixed-size ring of the most recent public messages. Appending
// to a full ring overwrites the oldest slot in the same step, so the ring never
// holds more than its capacity.
type History struct {
	buf   []Message
	start int
	size  int
}

// NewHistory returns an empty ring holding at most capacity messages.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = HistoryCapacity
	}
	return &History{buf: make([]Message, capacity)}
}

// Append stores msg, evicting the oldest message when full.
func (h *History) Append(msg Message) {
	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = msg
		h.size++
		return
	}
	h.buf[h.start] = msg
	h.start = (h.start + 1) % len(h.buf)
}

// Snapshot copies the ring, oldest first.
func (h *History) Snapshot() []Message {
	out := make([]Message, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

func (h *History) Len() int { return h.size }

// Cap returns the fixed capacity.
func (h *History) Cap() int { return len(h.buf) }

func (h *History) reset() {
	clear(h.buf)
	h.start, h.size = 0, 0
}
