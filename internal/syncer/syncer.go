package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/Lexi-Lu02/feeling-care/internal/queue"
	"github.com/Lexi-Lu02/feeling-care/internal/schema"
)

// CycleStats summarizes one drain cycle.
type CycleStats struct {
	// Processed is the number of tasks taken from the queue snapshot.
	Processed int

	// Delivered is the number of tasks written to the remote store.
	Delivered int

	// Requeued is the number of tasks that failed delivery and were
	// appended back to the queue tail for a later cycle.
	Requeued int

	// Dropped is the number of malformed tasks discarded without retry.
	Dropped int
}

// Syncer drains the pending-write queue and dispatches each task to the
// remote store.
//
// A Syncer is explicitly constructed and owns no persisted state itself;
// the queue owns task durability and the remote writer owns delivery. An
// internal mutex serializes cycles, so a reconnect event that fires while
// the startup cycle is still in flight queues behind it rather than
// interleaving two drains over the same tasks.
type Syncer struct {
	queue  *queue.Queue
	remote RemoteWriter
	logger *log.Logger

	cycleMu sync.Mutex
}

// New creates a Syncer draining q into remote.
//
// If logger is nil, a default logger writing to stderr is used.
//
// Example:
//
//	s := syncer.New(q, remote.NewSQLite(db), nil)
//	stats, err := s.RunCycle(ctx)
func New(q *queue.Queue, remote RemoteWriter, logger *log.Logger) *Syncer {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &Syncer{
		queue:  q,
		remote: remote,
		logger: logger,
	}
}

// RunCycle performs one full drain cycle.
//
// Tasks are processed strictly in enqueue order, one remote write at a
// time. A failed delivery re-enqueues the task (with a fresh enqueue
// timestamp) and never aborts the cycle; every task in the snapshot is
// attempted regardless of earlier failures. Malformed tasks are logged and
// dropped — a task this code cannot interpret will not succeed on retry.
//
// The returned error reports local persistence failures only; remote
// failures are absorbed into the requeue path by design.
func (s *Syncer) RunCycle(ctx context.Context) (CycleStats, error) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	var stats CycleStats
	var firstErr error

	pending := s.queue.Pending()
	if len(pending) == 0 {
		return stats, nil
	}
	s.logger.Printf("Starting drain cycle: %d pending task(s)", len(pending))

	for _, task := range pending {
		stats.Processed++

		if err := task.Validate(); err != nil {
			s.logger.Printf("Dropping malformed task seq=%d: %v", task.Seq, err)
			stats.Dropped++
			if err := s.queue.Advance(task.Seq); err != nil {
				s.logger.Printf("Warning: failed to advance cursor past seq %d: %v", task.Seq, err)
				if firstErr == nil {
					firstErr = err
				}
			}
			continue
		}

		if err := s.dispatch(ctx, task); errors.Is(err, errUninterpretable) {
			// Same no-retry policy as a missing kind: this task will
			// never decode differently on a later cycle.
			s.logger.Printf("Dropping uninterpretable task seq=%d: %v", task.Seq, err)
			stats.Dropped++
			if err := s.queue.Advance(task.Seq); err != nil {
				s.logger.Printf("Warning: failed to advance cursor past seq %d: %v", task.Seq, err)
				if firstErr == nil {
					firstErr = err
				}
			}
			continue
		} else if err != nil {
			s.logger.Printf("Remote write failed for %s task seq=%d: %v (requeueing)", task.Kind, task.Seq, err)

			if _, reqErr := s.queue.Enqueue(task.Kind, task.Payload); reqErr != nil {
				// Leave the cursor where it is: the task stays
				// pending and is re-delivered next cycle.
				s.logger.Printf("Warning: failed to requeue task seq=%d: %v", task.Seq, reqErr)
				if firstErr == nil {
					firstErr = reqErr
				}
				continue
			}
			stats.Requeued++
		} else {
			stats.Delivered++
		}

		if err := s.queue.Advance(task.Seq); err != nil {
			s.logger.Printf("Warning: failed to advance cursor past seq %d: %v", task.Seq, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	s.logger.Printf("Drain cycle complete: processed=%d delivered=%d requeued=%d dropped=%d",
		stats.Processed, stats.Delivered, stats.Requeued, stats.Dropped)
	return stats, firstErr
}

// errUninterpretable marks a task whose payload cannot be decoded.
// Such tasks are dropped instead of requeued.
var errUninterpretable = errors.New("uninterpretable task payload")

// dispatch routes a task to the remote write matching its kind.
func (s *Syncer) dispatch(ctx context.Context, task schema.Task) error {
	switch task.Kind {
	case schema.TaskKindEmail:
		var event schema.EmailEvent
		if err := json.Unmarshal(task.Payload, &event); err != nil {
			return fmt.Errorf("%w: %v", errUninterpretable, err)
		}
		return s.remote.WriteEmailEvent(ctx, event)

	case schema.TaskKindJournal:
		var entry schema.Entry
		if err := json.Unmarshal(task.Payload, &entry); err != nil {
			return fmt.Errorf("%w: %v", errUninterpretable, err)
		}
		return s.remote.WriteJournalEntry(ctx, entry)

	default:
		// Unreachable after Validate, kept for safety.
		return fmt.Errorf("unknown task kind %q", task.Kind)
	}
}
