package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"giftshop/internal/domain"
	"giftshop/internal/event"
	"giftshop/internal/infra"

	"github.com/google/uuid"
)

const (
	defaultInboxSize       = 256
	defaultJanitorInterval = time.Minute
	defaultDumpFile        = "panic_dump.json"
)

// Options configures a Sequencer. Zero values select defaults.
type Options struct {
	InboxSize       int
	Journal         domain.EventJournal
	IDs             domain.IDSource
	IdleTTL         time.Duration // 0 disables eviction
	JanitorInterval time.Duration
	DumpFile        string
	Metrics         *infra.Metrics
	Now             func() time.Time

	// OnStateUpdate is invoked on the sequencer goroutine after every applied
	// event. It must not block.
	OnStateUpdate func(domain.Storefront)
}

type result struct {
	state domain.Storefront
	err   error
}

type envelope struct {
	ctx   context.Context
	ev    event.Event
	reply chan result
}

// Sequencer is the core single-threaded storefront state machine.
// Every cart and selection change of every session is applied on the Run
// goroutine in sequence order.
type Sequencer struct {
	inbox    chan envelope
	done     chan struct{}
	sessions map[string]*domain.Storefront
	nextSeq  uint64

	journal         domain.EventJournal
	newID           domain.IDSource
	idleTTL         time.Duration
	janitorInterval time.Duration
	dumpFile        string
	metrics         *infra.Metrics
	now             func() time.Time

	// Boundary: used to notify the live feed of state changes
	onStateUpdate func(domain.Storefront)

	mu sync.RWMutex // Used only for external reads (e.g. HTTP handlers)
}

// NewSequencer creates a new sequencer instance.
func NewSequencer(opts Options) *Sequencer {
	inboxSize := opts.InboxSize
	if inboxSize <= 0 {
		inboxSize = defaultInboxSize
	}
	s := &Sequencer{
		inbox:           make(chan envelope, inboxSize),
		done:            make(chan struct{}),
		sessions:        make(map[string]*domain.Storefront),
		nextSeq:         1,
		journal:         opts.Journal,
		newID:           opts.IDs,
		idleTTL:         opts.IdleTTL,
		janitorInterval: opts.JanitorInterval,
		dumpFile:        opts.DumpFile,
		metrics:         opts.Metrics,
		now:             opts.Now,
		onStateUpdate:   opts.OnStateUpdate,
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.janitorInterval <= 0 {
		s.janitorInterval = defaultJanitorInterval
	}
	if s.dumpFile == "" {
		s.dumpFile = defaultDumpFile
	}
	if s.metrics == nil {
		s.metrics = &infra.Metrics{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Run starts the main event loop. This MUST be run in a single goroutine.
func (s *Sequencer) Run(ctx context.Context) {
	slog.Info("Sequencer started (single-thread storefront loop)")
	defer close(s.done)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
			s.DumpState(s.dumpFile)
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	var janitor <-chan time.Time
	if s.idleTTL > 0 {
		ticker := time.NewTicker(s.janitorInterval)
		defer ticker.Stop()
		janitor = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Sequencer stopping...")
			return
		case env := <-s.inbox:
			if err := env.ctx.Err(); err != nil {
				env.reply <- result{err: err}
				continue
			}
			state, err := s.processEvent(ctx, env.ev)
			env.reply <- result{state: state, err: err}
		case <-janitor:
			s.EvictIdle(ctx)
		}
	}
}

// Submit hands an event to the loop and waits for the resulting session state.
// An event whose ctx is done before the loop picks it up is discarded. Once
// the loop has started on it, the event is applied even if ctx expires
// before the reply arrives, so a ctx error does not prove it was dropped.
func (s *Sequencer) Submit(ctx context.Context, ev event.Event) (domain.Storefront, error) {
	env := envelope{ctx: ctx, ev: ev, reply: make(chan result, 1)}

	select {
	case s.inbox <- env:
	case <-s.done:
		return domain.Storefront{}, domain.ErrSequencerStopped
	case <-ctx.Done():
		return domain.Storefront{}, ctx.Err()
	}

	select {
	case res := <-env.reply:
		return res.state, res.err
	case <-s.done:
		select {
		case res := <-env.reply:
			return res.state, res.err
		default:
			return domain.Storefront{}, domain.ErrSequencerStopped
		}
	case <-ctx.Done():
		return domain.Storefront{}, ctx.Err()
	}
}

func (s *Sequencer) processEvent(ctx context.Context, ev event.Event) (domain.Storefront, error) {
	start := time.Now()

	// 1. Stamp sequence and time. Touches are applied unsequenced.
	durable := event.Journaled(ev)
	if durable {
		ev.SetSeq(s.nextSeq)
	} else {
		ev.SetSeq(0)
	}
	if ev.GetTs() == 0 {
		ev.SetTs(s.now().UnixMicro())
	}
	s.assignLineID(ev)

	// 2. WAL-first: Persistence
	if durable && s.journal != nil {
		if err := s.persist(ctx, ev); err != nil {
			s.metrics.RecordError()
			slog.Error("Journal write failed, event rejected",
				slog.Uint64("seq", ev.GetSeq()),
				slog.String("type", string(ev.GetType())),
				slog.Any("error", err))
			return domain.Storefront{}, err
		}
	}

	// 3. Logic Dispatch
	state := s.apply(ev)

	// 4. Increment Sequence
	if durable {
		s.nextSeq++
	}
	s.metrics.RecordEvent(time.Since(start).Nanoseconds())

	if s.onStateUpdate != nil {
		s.onStateUpdate(state)
	}
	return state, nil
}

// assignLineID fixes the id of a line an add is about to create, so the
// journal carries it and replay reproduces the same ids.
func (s *Sequencer) assignLineID(ev event.Event) {
	add, ok := ev.(*event.AddToCartEvent)
	if !ok || add.LineID != "" {
		return
	}
	if st, exists := s.sessions[add.SessionID]; exists {
		if _, has := st.Cart.LineFor(add.Value); has {
			return
		}
	}
	add.LineID = s.newID()
}

func (s *Sequencer) persist(ctx context.Context, ev event.Event) error {
	payload, err := event.Encode(ev)
	if err != nil {
		return err
	}
	entry := &domain.JournalEntry{
		Seq:       ev.GetSeq(),
		SessionID: ev.GetSessionID(),
		Type:      string(ev.GetType()),
		Payload:   payload,
		CreatedAt: time.UnixMicro(ev.GetTs()),
	}
	if err := s.journal.SaveEvent(ctx, entry); err != nil {
		return fmt.Errorf("journal event %d: %w", entry.Seq, err)
	}
	return nil
}

// apply runs the reducer for ev and publishes the new session state.
func (s *Sequencer) apply(ev event.Event) domain.Storefront {
	sid := ev.GetSessionID()

	var next domain.Storefront
	if cur, ok := s.sessions[sid]; ok {
		next = *cur
	} else {
		next = *domain.NewStorefront(sid, s.newID)
	}

	switch e := ev.(type) {
	case *event.AddToCartEvent:
		next.Cart = next.Cart.AddWithID(e.Value, e.LineID)
		s.metrics.RecordCartAdd()
	case *event.SetQuantityEvent:
		s.countLineChange(next.Cart, e.LineID, e.Quantity <= 0)
		next.Cart = next.Cart.SetQuantity(e.LineID, e.Quantity)
	case *event.RemoveLineEvent:
		s.countLineChange(next.Cart, e.LineID, true)
		next.Cart = next.Cart.Remove(e.LineID)
	case *event.SelectDenominationEvent:
		next.Selection = next.Selection.Select(e.Value)
	case *event.TouchEvent:
		// session bookkeeping only
	default:
		slog.Warn("Unknown event type", slog.Any("type", ev.GetType()))
	}

	next.Cart.VerifyInvariant()
	next.LastSeen = time.UnixMicro(ev.GetTs())
	if seq := ev.GetSeq(); seq != 0 {
		next.LastSeq = seq
	}

	s.mu.Lock()
	s.sessions[sid] = &next
	count := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(count)

	return next
}

func (s *Sequencer) countLineChange(cart domain.Cart, lineID string, removes bool) {
	if !cart.Has(lineID) {
		s.metrics.RecordMissedUpdate()
		slog.Debug("Cart update for unknown line ignored", slog.String("line_id", lineID))
		return
	}
	if removes {
		s.metrics.RecordLineRemoved()
	}
}

// ReplayEvent processes an event synchronously without journaling.
// It must be called before Run starts. Sequence numbers must increase;
// holes left by evicted sessions are skipped.
func (s *Sequencer) ReplayEvent(ev event.Event) {
	if ev.GetSeq() < s.nextSeq {
		panic(fmt.Sprintf("REPLAY_ORDER_VIOLATION: expected >= %d, got %d", s.nextSeq, ev.GetSeq()))
	}
	s.apply(ev)
	s.nextSeq = ev.GetSeq() + 1
}

// Restore replays the journal. It must be called before Run starts.
func (s *Sequencer) Restore(ctx context.Context) (int, error) {
	if s.journal == nil {
		return 0, nil
	}
	entries, err := s.journal.LoadEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("load journal: %w", err)
	}
	for _, entry := range entries {
		ev, err := event.Decode(event.Type(entry.Type), entry.Payload)
		if err != nil {
			return 0, fmt.Errorf("replay seq %d: %w", entry.Seq, err)
		}
		ev.SetSeq(entry.Seq)
		s.ReplayEvent(ev)
	}
	return len(entries), nil
}

// EvictIdle drops sessions not seen within the idle TTL together with
// their journal entries. If the journal delete fails the sessions are kept
// and retried on the next tick.
func (s *Sequencer) EvictIdle(ctx context.Context) int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTTL)

	var idle []string
	s.mu.RLock()
	for id, st := range s.sessions {
		if st.LastSeen.Before(cutoff) {
			idle = append(idle, id)
		}
	}
	s.mu.RUnlock()
	if len(idle) == 0 {
		return 0
	}

	if s.journal != nil {
		if err := s.journal.DeleteSessions(ctx, idle); err != nil {
			s.metrics.RecordError()
			slog.Error("Journal compaction failed, idle sessions kept",
				slog.Int("sessions", len(idle)),
				slog.Any("error", err))
			return 0
		}
	}

	s.mu.Lock()
	for _, id := range idle {
		delete(s.sessions, id)
	}
	count := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SetActiveSessions(count)
	slog.Debug("Idle sessions evicted", slog.Int("evicted", len(idle)), slog.Int("remaining", count))
	return len(idle)
}

// Snapshot returns a copy of a session state (external read).
func (s *Sequencer) Snapshot(sessionID string) (domain.Storefront, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return domain.Storefront{}, false
	}
	return *state, true // Cart is immutable, a shallow copy is safe
}

// SessionCount returns the number of live sessions.
func (s *Sequencer) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// NextSeq returns the sequence number the next event will receive.
// Only meaningful on the sequencer goroutine or before Run.
func (s *Sequencer) NextSeq() uint64 {
	return s.nextSeq
}

// Done is closed when Run returns.
func (s *Sequencer) Done() <-chan struct{} {
	return s.done
}

// DumpState writes the entire internal state to a file (for post-mortem).
func (s *Sequencer) DumpState(filename string) {
	slog.Info("Dumping internal state...", slog.String("file", filename))

	s.mu.RLock()
	data := struct {
		NextSeq  uint64                        `json:"next_seq"`
		Sessions map[string]*domain.Storefront `json:"sessions"`
	}{
		NextSeq:  s.nextSeq,
		Sessions: s.sessions,
	}
	b, err := json.MarshalIndent(data, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		slog.Error("Failed to marshal state", slog.Any("error", err))
		return
	}

	err = os.WriteFile(filename, b, 0644)
	if err != nil {
		slog.Error("Failed to write state dump", slog.Any("error", err))
	}
}
