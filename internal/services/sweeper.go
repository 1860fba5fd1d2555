package services

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"remindly/internal/models"
	"remindly/internal/store"
	"remindly/internal/timeutil"
)

// ErrSweepInProgress is returned when a sweep is invoked while another is
// still running. Overlapping sweeps would double-send: both would read
// the same Pending rows before either writes a terminal status.
var ErrSweepInProgress = errors.New("sweep already in progress")

// ReminderSender is the notification side effect the sweep triggers for
// each due reminder.
type ReminderSender interface {
	SendReminder(r models.Reminder) error
}

// SweepResult summarizes one pass over the Pending records.
type SweepResult struct {
	Checked int `json:"checked"` // Pending records examined
	Sent    int `json:"sent"`    // delivered and marked Sent
	Failed  int `json:"failed"`  // delivery failed, marked Error
	Skipped int `json:"skipped"` // bad timestamp, not yet due, or claim lost
}

// Sweeper runs the due-reminder reconciliation pass: every Pending record
// whose due instant has passed gets its notification sent and its status
// moved to Sent or Error. Non-Pending records are never touched.
type Sweeper struct {
	reminders store.ReminderStore
	sender    ReminderSender
	mu        sync.Mutex
	now       func() time.Time
}

// NewSweeper wires a sweeper over the reminder store and the mail sender.
func NewSweeper(reminders store.ReminderStore, sender ReminderSender) *Sweeper {
	return &Sweeper{
		reminders: reminders,
		sender:    sender,
		now:       timeutil.Now,
	}
}

// Sweep performs one full pass. Per-record failures (bad timestamp, send
// failure) never abort the pass; a store-level failure does, with nothing
// rolled back since each record write stands alone.
func (s *Sweeper) Sweep() (SweepResult, error) {
	if !s.mu.TryLock() {
		return SweepResult{}, ErrSweepInProgress
	}
	defer s.mu.Unlock()

	var result SweepResult

	pending, err := s.reminders.ListPending()
	if err != nil {
		return result, fmt.Errorf("sweep aborted: %w", err)
	}

	now := s.now()
	for _, r := range pending {
		// Only Pending records are eligible. The store filter already
		// narrowed to Pending, but a record may carry a stale status if
		// edited by hand in the store UI between fetch and here.
		if r.Status != models.StatusPending {
			continue
		}
		result.Checked++

		if r.DueAt.IsZero() {
			log.Printf("Warning: skipping reminder %s: unparsable due time %q", r.ID, r.DueRaw)
			result.Skipped++
			continue
		}
		if !r.IsDue(now) {
			result.Skipped++
			continue
		}

		result = s.deliver(r, result)
	}

	log.Printf("Sweep complete: checked=%d sent=%d failed=%d skipped=%d",
		result.Checked, result.Sent, result.Failed, result.Skipped)
	return result, nil
}

// deliver claims one due record, sends its notification, and writes the
// terminal status. The claim (Pending -> Processing) lands in the store
// before the send so a competing sweep from another process cannot pick
// the record up again.
func (s *Sweeper) deliver(r models.Reminder, result SweepResult) SweepResult {
	if err := s.reminders.UpdateStatus(r.RecordID, models.StatusProcessing); err != nil {
		log.Printf("Warning: could not claim reminder %s, leaving for next sweep: %v", r.ID, err)
		result.Skipped++
		return result
	}

	if err := s.sender.SendReminder(r); err != nil {
		log.Printf("Error: failed to send reminder %s to %s: %v", r.ID, r.Email, err)
		if err := s.reminders.UpdateStatus(r.RecordID, models.StatusError); err != nil {
			log.Printf("Error: failed to mark reminder %s as Error: %v", r.ID, err)
		}
		result.Failed++
		return result
	}

	if err := s.reminders.UpdateStatus(r.RecordID, models.StatusSent); err != nil {
		// The mail went out; the record just still says Processing. The
		// claim keeps later sweeps from re-sending it.
		log.Printf("Error: failed to mark reminder %s as Sent: %v", r.ID, err)
	}
	result.Sent++
	log.Printf("Sent reminder %s to %s", r.ID, r.Email)
	return result
}

// Worker runs the sweep on a fixed interval in the background. Only
// started when the deployment opts in; other deployments rely on the
// manual trigger or the external cron endpoint instead.
type Worker struct {
	sweeper  *Sweeper
	interval time.Duration
	stop     chan struct{}
}

// NewWorker wraps a sweeper in a periodic runner.
func NewWorker(sweeper *Sweeper, interval time.Duration) *Worker {
	return &Worker{
		sweeper:  sweeper,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start launches the background loop.
func (w *Worker) Start() {
	go w.run()
}

// Stop halts the loop. A sweep already underway finishes on its own.
func (w *Worker) Stop() {
	close(w.stop)
}

func (w *Worker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.sweeper.Sweep(); err != nil && !errors.Is(err, ErrSweepInProgress) {
				log.Printf("Error: background sweep failed: %v", err)
			}
		case <-w.stop:
			return
		}
	}
}
