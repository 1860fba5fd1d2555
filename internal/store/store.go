package store

import (
	"fmt"
	"strings"

	"github.com/mehanizm/airtable"
)

// pageSize is the page size used when walking a full table. The store
// caps pages at 100 records; anything larger is silently clamped anyway.
const pageSize = 100

// NewClient builds the shared record-store client from a personal access
// token. Both tables hang off the same client so its rate limiting
// applies across the whole process.
func NewClient(token string) *airtable.Client {
	return airtable.NewClient(token)
}

// fetchAll walks every page of a table, optionally narrowed by a filter
// formula, and returns the raw records.
func fetchAll(table *airtable.Table, formula string) ([]*airtable.Record, error) {
	var out []*airtable.Record
	offset := ""
	for {
		cfg := table.GetRecords().PageSize(pageSize)
		if formula != "" {
			cfg = cfg.WithFilterFormula(formula)
		}
		if offset != "" {
			cfg = cfg.WithOffset(offset)
		}
		page, err := cfg.Do()
		if err != nil {
			return nil, fmt.Errorf("record store list: %w", err)
		}
		out = append(out, page.Records...)
		if page.Offset == "" {
			return out, nil
		}
		offset = page.Offset
	}
}

// createOne writes a single record and returns the store-assigned id.
func createOne(table *airtable.Table, fields map[string]any) (string, error) {
	received, err := table.AddRecords(&airtable.Records{
		Records: []*airtable.Record{{Fields: fields}},
	})
	if err != nil {
		return "", fmt.Errorf("record store create: %w", err)
	}
	if len(received.Records) == 0 {
		return "", fmt.Errorf("record store create: empty response")
	}
	return received.Records[0].ID, nil
}

// updateOne patches the given fields on one record, leaving the rest of
// the row untouched. Last write wins; the store has no concurrency tokens.
func updateOne(table *airtable.Table, recordID string, fields map[string]any) error {
	_, err := table.UpdateRecordsPartial(&airtable.Records{
		Records: []*airtable.Record{{ID: recordID, Fields: fields}},
	})
	if err != nil {
		return fmt.Errorf("record store update %s: %w", recordID, err)
	}
	return nil
}

// deleteOne removes one record by id.
func deleteOne(table *airtable.Table, recordID string) error {
	record, err := table.GetRecord(recordID)
	if err != nil {
		return fmt.Errorf("record store get %s: %w", recordID, err)
	}
	if _, err := record.DeleteRecord(); err != nil {
		return fmt.Errorf("record store delete %s: %w", recordID, err)
	}
	return nil
}

// escapeFormulaString escapes a value for interpolation into a filter
// formula's double-quoted string literal.
func escapeFormulaString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
