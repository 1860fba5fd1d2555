package store

import (
	"fmt"
	"log"
	"time"

	"remindly/internal/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mehanizm/airtable"
)

// ReminderStore is everything the rest of the app may do to the reminders
// table.
type ReminderStore interface {
	// List returns every reminder row, including rows whose due timestamp
	// failed to parse (their DueAt is zero and DueRaw carries the string).
	List() ([]models.Reminder, error)
	// ListPending returns only rows whose status is Pending, fetched with
	// a formula filter so the sweep never sees terminal records. Never
	// served from cache.
	ListPending() ([]models.Reminder, error)
	// Create persists a new reminder and returns it with its store
	// record id filled in.
	Create(r models.Reminder) (models.Reminder, error)
	// UpdateStatus writes only the status field of one record.
	UpdateStatus(recordID string, status models.ReminderStatus) error
}

const reminderCacheKey = "reminders:all"

type airtableReminderStore struct {
	table *airtable.Table
	// cache is a short-lived read-through cache for List. The store is
	// the single source of truth; this only spares the full-table fetch
	// when the dashboard re-renders in quick succession.
	cache *expirable.LRU[string, []models.Reminder]
}

// NewReminderStore wires the reminders table of the given base.
func NewReminderStore(client *airtable.Client, baseID, tableName string, cacheTTL time.Duration) ReminderStore {
	return &airtableReminderStore{
		table: client.GetTable(baseID, tableName),
		cache: expirable.NewLRU[string, []models.Reminder](4, nil, cacheTTL),
	}
}

func (s *airtableReminderStore) List() ([]models.Reminder, error) {
	if cached, ok := s.cache.Get(reminderCacheKey); ok {
		return cached, nil
	}

	records, err := fetchAll(s.table, "")
	if err != nil {
		return nil, err
	}

	reminders := make([]models.Reminder, 0, len(records))
	for _, rec := range records {
		r, err := models.ReminderFromFields(rec.ID, rec.Fields)
		if err != nil {
			// Keep the flagged row; the dashboard shows it as invalid.
			log.Printf("Warning: %v", err)
		}
		reminders = append(reminders, r)
	}

	s.cache.Add(reminderCacheKey, reminders)
	return reminders, nil
}

func (s *airtableReminderStore) ListPending() ([]models.Reminder, error) {
	formula := fmt.Sprintf(`{%s}="%s"`, models.FieldStatus, models.StatusPending)
	records, err := fetchAll(s.table, formula)
	if err != nil {
		return nil, err
	}

	reminders := make([]models.Reminder, 0, len(records))
	for _, rec := range records {
		// Parse failures still come back to the caller: the sweep decides
		// to skip them, the adapter does not hide them.
		r, _ := models.ReminderFromFields(rec.ID, rec.Fields)
		reminders = append(reminders, r)
	}
	return reminders, nil
}

func (s *airtableReminderStore) Create(r models.Reminder) (models.Reminder, error) {
	recordID, err := createOne(s.table, r.Fields())
	if err != nil {
		return models.Reminder{}, err
	}
	r.RecordID = recordID
	s.cache.Remove(reminderCacheKey)
	return r, nil
}

func (s *airtableReminderStore) UpdateStatus(recordID string, status models.ReminderStatus) error {
	err := updateOne(s.table, recordID, map[string]any{
		models.FieldStatus: string(status),
	})
	if err != nil {
		return err
	}
	s.cache.Remove(reminderCacheKey)
	return nil
}
