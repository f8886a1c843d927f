package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"swapPool/internal/model"
)

// Notifier mirrors the pool's notifier contract so implementations here
// can be composed without importing the pool package.
type Notifier interface {
	Emit(eventName string, decoded interface{})
}

// Recorder buffers emitted events, stamping each with a sequence number,
// the current operation's seq and timestamp, and an emission time. The
// engine drains the buffer in batches for storage writes.
type Recorder struct {
	mu     sync.Mutex
	seq    uint64
	opSeq  uint64
	opTime uint64
	events []model.Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// SetOperation tags subsequent events with the operation being applied.
func (r *Recorder) SetOperation(seq, timestamp uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opSeq = seq
	r.opTime = timestamp
}

func (r *Recorder) Emit(eventName string, decoded interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	r.events = append(r.events, model.Event{
		Seq:       r.seq,
		OpSeq:     r.opSeq,
		EventName: eventName,
		Timestamp: r.opTime,
		Decoded:   decoded,
		EmittedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Drain returns the buffered events and resets the buffer. Sequence
// numbering continues across drains.
func (r *Recorder) Drain() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	drained := r.events
	r.events = nil
	return drained
}

// LogNotifier writes every event to a zap logger.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Emit(eventName string, decoded interface{}) {
	n.logger.Info("pool event",
		zap.String("event_name", eventName),
		zap.Any("decoded", decoded),
	)
}

// Multi fans out events to several notifiers in order.
type Multi []Notifier

func (m Multi) Emit(eventName string, decoded interface{}) {
	for _, n := range m {
		n.Emit(eventName, decoded)
	}
}
