package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"remindly/internal/models"
	"remindly/internal/timeutil"

	"github.com/gin-gonic/gin"
)

// CreateCompanyRequest is the company/bill entry form. Due dates arrive
// as date strings and fill the record's due-date slots in order.
type CreateCompanyRequest struct {
	ISIN         string   `json:"isin" binding:"required"`
	ARN          string   `json:"arn"`
	IssuerName   string   `json:"issuer_name" binding:"required"`
	ContactName  string   `json:"contact_name"`
	ContactEmail string   `json:"contact_email" binding:"omitempty,email"`
	ContactPhone string   `json:"contact_phone"`
	Address      string   `json:"address"`
	Amount       float64  `json:"amount"`
	DueDates     []string `json:"due_dates"`
}

// UpdateCompanyRequest carries a partial edit; absent fields stay as
// they are in the store.
type UpdateCompanyRequest struct {
	ISIN         *string   `json:"isin"`
	ARN          *string   `json:"arn"`
	IssuerName   *string   `json:"issuer_name"`
	ContactName  *string   `json:"contact_name"`
	ContactEmail *string   `json:"contact_email"`
	ContactPhone *string   `json:"contact_phone"`
	Address      *string   `json:"address"`
	Amount       *float64  `json:"amount"`
	DueDates     *[]string `json:"due_dates"`
}

// dueDatesFromStrings converts form date strings into instants, capped
// at the record's slot count.
func dueDatesFromStrings(raw []string) ([]time.Time, error) {
	if len(raw) > models.MaxDueSlots {
		return nil, fmt.Errorf("at most %d due dates are supported, got %d", models.MaxDueSlots, len(raw))
	}
	out := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		due, err := timeutil.ParseStored(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid due date %q", s)
		}
		out = append(out, due)
	}
	return out, nil
}

// CreateCompany persists a new company/bill record. Duplicate ISINs are
// allowed; the store has no uniqueness and the business tolerates them.
func (api *API) CreateCompany(c *gin.Context) {
	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	dueDates, err := dueDatesFromStrings(req.DueDates)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	company := models.Company{
		ISIN:         req.ISIN,
		ARN:          req.ARN,
		IssuerName:   req.IssuerName,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
		Amount:       req.Amount,
		DueDates:     dueDates,
	}

	created, err := api.Companies.Create(company)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "failed to save company", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListCompanies returns company records, optionally narrowed by ?q=
// matching ISIN, ARN, or issuer name.
func (api *API) ListCompanies(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	companies, err := api.Companies.Search(query)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "failed to load companies", err)
		return
	}

	// The store-side formula filter is authoritative; re-check here so a
	// formula quirk never widens the result set.
	if query != "" {
		matched := companies[:0:0]
		for _, company := range companies {
			if company.Matches(query) {
				matched = append(matched, company)
			}
		}
		companies = matched
	}

	companies = append([]models.Company(nil), companies...)
	sort.SliceStable(companies, func(i, j int) bool {
		return companies[i].IssuerName < companies[j].IssuerName
	})

	c.JSON(http.StatusOK, gin.H{"companies": companies, "count": len(companies)})
}

// GetCompany returns one record by its store id.
func (api *API) GetCompany(c *gin.Context) {
	company, err := api.Companies.Get(c.Param("id"))
	if err != nil {
		handleError(c, http.StatusNotFound, "company not found", err)
		return
	}
	c.JSON(http.StatusOK, company)
}

// UpdateCompany applies a partial edit to one record.
func (api *API) UpdateCompany(c *gin.Context) {
	var req UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	fields := map[string]any{}
	setString := func(key string, v *string) {
		if v != nil {
			fields[key] = *v
		}
	}
	setString(models.FieldISIN, req.ISIN)
	setString(models.FieldARN, req.ARN)
	setString(models.FieldIssuerName, req.IssuerName)
	setString(models.FieldContactName, req.ContactName)
	setString(models.FieldContactEmail, req.ContactEmail)
	setString(models.FieldContactPhone, req.ContactPhone)
	setString(models.FieldAddress, req.Address)
	if req.Amount != nil {
		fields[models.FieldAmount] = *req.Amount
	}
	if req.DueDates != nil {
		dueDates, err := dueDatesFromStrings(*req.DueDates)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		for i := 1; i <= models.MaxDueSlots; i++ {
			if i <= len(dueDates) {
				fields[models.DueSlotField(i)] = timeutil.Normalize(dueDates[i-1]).Format(time.RFC3339)
			} else {
				// Clear slots the edit no longer uses.
				fields[models.DueSlotField(i)] = ""
			}
		}
	}

	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	if err := api.Companies.Update(c.Param("id"), fields); err != nil {
		handleError(c, http.StatusInternalServerError, "failed to update company", err)
		return
	}

	company, err := api.Companies.Get(c.Param("id"))
	if err != nil {
		handleError(c, http.StatusInternalServerError, "failed to reload company", err)
		return
	}
	c.JSON(http.StatusOK, company)
}

// DeleteCompany removes one record.
func (api *API) DeleteCompany(c *gin.Context) {
	if err := api.Companies.Delete(c.Param("id")); err != nil {
		handleError(c, http.StatusInternalServerError, "failed to delete company", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "company deleted"})
}
