package mqtt

// queuedMsg holds one publish that could not be handed to the broker.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// replayQueue keeps the most recent publishes from a broker outage,
// oldest-first, evicting the oldest once full. Callers synchronize.
type replayQueue struct {
	slots    []queuedMsg
	oldest   int // index of the oldest queued publish
	n        int
	dropping bool // an eviction happened since the last drain
}

func newReplayQueue(capacity int) *replayQueue {
	return &replayQueue{slots: make([]queuedMsg, capacity)}
}

// add queues m, evicting the oldest publish when the queue is full. It
// reports true only for the first eviction since the last drain so the
// caller can log one warning per outage rather than one per message.
func (q *replayQueue) add(m queuedMsg) bool {
	if q.n == len(q.slots) {
		q.slots[q.oldest] = m
		q.oldest = (q.oldest + 1) % len(q.slots)
		first := !q.dropping
		q.dropping = true
		return first
	}
	q.slots[(q.oldest+q.n)%len(q.slots)] = m
	q.n++
	return false
}

// drain returns the queued publishes oldest-first and resets the queue.
func (q *replayQueue) drain() []queuedMsg {
	if q.n == 0 {
		return nil
	}
	out := make([]queuedMsg, q.n)
	for i := range out {
		out[i] = q.slots[(q.oldest+i)%len(q.slots)]
	}
	q.oldest = 0
	q.n = 0
	q.dropping = false
	return out
}

func (q *replayQueue) depth() int {
	return q.n
}
