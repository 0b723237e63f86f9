package calendar

import (
	"sync"

	"go.uber.org/zap"

	appErrors "github.com/bestsecurity/meeting-scheduler/pkg/errors"
)

// TxnState is the lifecycle state of an optimistic update.
type TxnState string

// Optimistic update states.
const (
	TxnPending   TxnState = "pending"
	TxnCommitted TxnState = "committed"
	TxnReverted  TxnState = "reverted"
)

type transaction struct {
	id    string
	prior EventRecord
	shown EventRecord
	state TxnState
}

// Tracker records in-flight optimistic updates. An event moves
// visually the moment the gesture lands; the tracker remembers its
// prior position so a rejection can restore it. Responses may arrive
// in any order: a revert always beats a stale success for the same
// mutation id.
type Tracker struct {
	mu     sync.Mutex
	txns   map[string]*transaction
	logger *zap.Logger
}

// NewTracker constructs a Tracker instance.
func NewTracker(logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{txns: map[string]*transaction{}, logger: logger}
}

// Begin registers an optimistic update: prior is the event as it was
// rendered, shown is the position applied optimistically.
func (t *Tracker) Begin(mutationID string, prior, shown EventRecord) (EventRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.txns[mutationID]; exists {
		return EventRecord{}, appErrors.Clone(appErrors.ErrValidation, "mutation id already in flight")
	}
	t.txns[mutationID] = &transaction{id: mutationID, prior: prior, shown: shown, state: TxnPending}
	return shown, nil
}

// Commit resolves a mutation with the server's view of the event.
// Returns the record to render. A commit that arrives after a revert
// is stale and loses: the prior position stays.
func (t *Tracker) Commit(mutationID string, updated EventRecord) (EventRecord, TxnState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	txn, exists := t.txns[mutationID]
	if !exists {
		return updated, TxnCommitted
	}
	if txn.state == TxnReverted {
		t.logger.Debug("stale success ignored", zap.String("mutation_id", mutationID))
		return txn.prior, TxnReverted
	}
	txn.state = TxnCommitted
	txn.shown = updated
	return updated, TxnCommitted
}

// Revert resolves a mutation as rejected and returns the record to
// restore. Revert wins even over an earlier commit.
func (t *Tracker) Revert(mutationID string) (EventRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	txn, exists := t.txns[mutationID]
	if !exists {
		return EventRecord{}, false
	}
	txn.state = TxnReverted
	return txn.prior, true
}

// State reports the current state of a mutation id.
func (t *Tracker) State(mutationID string) (TxnState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	txn, exists := t.txns[mutationID]
	if !exists {
		return "", false
	}
	return txn.state, true
}

// Resolve drops a finished transaction once the caller has refetched.
// Pending transactions are kept.
func (t *Tracker) Resolve(mutationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	txn, exists := t.txns[mutationID]
	if !exists || txn.state == TxnPending {
		return
	}
	delete(t.txns, mutationID)
}

// Pending returns the number of unresolved optimistic updates.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	count := 0
	for _, txn := range t.txns {
		if txn.state == TxnPending {
			count++
		}
	}
	return count
}
