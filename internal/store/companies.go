package store

import (
	"fmt"
	"time"

	"remindly/internal/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mehanizm/airtable"
)

// CompanyStore is everything the rest of the app may do to the
// company/bill table.
type CompanyStore interface {
	List() ([]models.Company, error)
	// Search narrows by a substring of ISIN, ARN, or issuer name. The
	// narrowing happens in the store via a formula filter; an empty query
	// behaves like List.
	Search(query string) ([]models.Company, error)
	Get(recordID string) (models.Company, error)
	Create(c models.Company) (models.Company, error)
	// Update patches the given fields on one record.
	Update(recordID string, fields map[string]any) error
	Delete(recordID string) error
}

const companyCacheKey = "companies:all"

type airtableCompanyStore struct {
	table *airtable.Table
	cache *expirable.LRU[string, []models.Company]
}

// NewCompanyStore wires the companies table of the given base.
func NewCompanyStore(client *airtable.Client, baseID, tableName string, cacheTTL time.Duration) CompanyStore {
	return &airtableCompanyStore{
		table: client.GetTable(baseID, tableName),
		cache: expirable.NewLRU[string, []models.Company](4, nil, cacheTTL),
	}
}

func (s *airtableCompanyStore) List() ([]models.Company, error) {
	if cached, ok := s.cache.Get(companyCacheKey); ok {
		return cached, nil
	}

	records, err := fetchAll(s.table, "")
	if err != nil {
		return nil, err
	}

	companies := make([]models.Company, 0, len(records))
	for _, rec := range records {
		companies = append(companies, models.CompanyFromFields(rec.ID, rec.Fields))
	}

	s.cache.Add(companyCacheKey, companies)
	return companies, nil
}

func (s *airtableCompanyStore) Search(query string) ([]models.Company, error) {
	if query == "" {
		return s.List()
	}

	q := escapeFormulaString(query)
	formula := fmt.Sprintf(
		`OR(SEARCH(LOWER("%s"), LOWER({%s})), SEARCH(LOWER("%s"), LOWER({%s})), SEARCH(LOWER("%s"), LOWER({%s})))`,
		q, models.FieldISIN, q, models.FieldARN, q, models.FieldIssuerName,
	)
	records, err := fetchAll(s.table, formula)
	if err != nil {
		return nil, err
	}

	companies := make([]models.Company, 0, len(records))
	for _, rec := range records {
		companies = append(companies, models.CompanyFromFields(rec.ID, rec.Fields))
	}
	return companies, nil
}

func (s *airtableCompanyStore) Get(recordID string) (models.Company, error) {
	record, err := s.table.GetRecord(recordID)
	if err != nil {
		return models.Company{}, fmt.Errorf("record store get %s: %w", recordID, err)
	}
	return models.CompanyFromFields(record.ID, record.Fields), nil
}

func (s *airtableCompanyStore) Create(c models.Company) (models.Company, error) {
	recordID, err := createOne(s.table, c.Fields())
	if err != nil {
		return models.Company{}, err
	}
	c.RecordID = recordID
	s.cache.Remove(companyCacheKey)
	return c, nil
}

func (s *airtableCompanyStore) Update(recordID string, fields map[string]any) error {
	if err := updateOne(s.table, recordID, fields); err != nil {
		return err
	}
	s.cache.Remove(companyCacheKey)
	return nil
}

func (s *airtableCompanyStore) Delete(recordID string) error {
	if err := deleteOne(s.table, recordID); err != nil {
		return err
	}
	s.cache.Remove(companyCacheKey)
	return nil
}
