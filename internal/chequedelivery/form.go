package chequedelivery

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-petr/cheque-desk/internal/domain"
	"github.com/go-petr/cheque-desk/pkg/validatorpkg"
	"github.com/shopspring/decimal"
)

const (
	dateLayout      = "2006-01-02"
	maxAmountLength = 32
)

// chequeForm is the submitted cheque form. Every value is kept as typed so
// that an invalid form can be shown again unchanged.
type chequeForm struct {
	ID           int64  `form:"id" json:"id,omitempty"`
	Version      int32  `form:"version" json:"version,omitempty"`
	CreatedAtUTC string `form:"created_at_utc" json:"created_at_utc,omitempty"`
	Number       string `form:"number" json:"number"`
	PayeeName    string `form:"payee_name" json:"payee_name"`
	Amount       string `form:"amount" json:"amount"`
	Currency     string `form:"currency" json:"currency"`
	IssueDate    string `form:"issue_date" json:"issue_date"`
	DueDate      string `form:"due_date" json:"due_date"`
	Status       string `form:"status" json:"status"`
	Notes        string `form:"notes" json:"notes"`
}

func formFromCheque(c domain.Cheque) chequeForm {
	return chequeForm{
		ID:           c.ID,
		Version:      c.Version,
		CreatedAtUTC: c.CreatedAtUTC.Format(time.RFC3339Nano),
		Number:       c.Number,
		PayeeName:    c.PayeeName,
		Amount:       c.Amount.StringFixed(2),
		Currency:     c.Currency,
		IssueDate:    c.IssueDate.Format(dateLayout),
		DueDate:      c.DueDate.Format(dateLayout),
		Status:       strconv.Itoa(int(c.Status)),
		Notes:        c.Notes,
	}
}

func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}

	return time.Parse(dateLayout, v)
}

var (
	errAmountNotNumber = errors.New("Amount must be a number")
	errAmountRange     = errors.New(validatorpkg.MoneyRangeMsg("Amount"))
)

// parseAmount parses a submitted amount, rejecting oversized input before any arithmetic.
func parseAmount(v string) (decimal.Decimal, error) {
	if len(v) > maxAmountLength {
		return decimal.Decimal{}, errAmountNotNumber
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, errAmountNotNumber
	}

	if !validatorpkg.Bounded(d) {
		return decimal.Decimal{}, errAmountRange
	}

	return d, nil
}

// params converts the form into service input. Values that cannot be parsed
// are reported as field errors.
func (f chequeForm) params() (domain.ChequeParams, *domain.ValidationError) {
	verr := &domain.ValidationError{}

	p := domain.ChequeParams{
		Number:    f.Number,
		PayeeName: f.PayeeName,
		Currency:  f.Currency,
		Notes:     f.Notes,
	}

	if amount := strings.TrimSpace(f.Amount); amount != "" {
		d, err := parseAmount(amount)
		if err != nil {
			verr.Add("amount", err.Error())
		}

		p.Amount = d
	}

	issue, err := parseDate(f.IssueDate)
	if err != nil {
		verr.Add("issue_date", "Issue date must be a date (YYYY-MM-DD)")
	}

	p.IssueDate = issue

	due, err := parseDate(f.DueDate)
	if err != nil {
		verr.Add("due_date", "Due date must be a date (YYYY-MM-DD)")
	}

	p.DueDate = due

	if status := strings.TrimSpace(f.Status); status != "" {
		s, err := domain.ParseChequeStatus(status)
		if err != nil {
			verr.Add("status", "Status has an unknown value")
		}

		p.Status = s
	}

	if !verr.Empty() {
		return p, verr
	}

	return p, nil
}

func (f chequeForm) updateParams() (domain.UpdateChequeParams, *domain.ValidationError) {
	p, verr := f.params()

	if f.Version < 1 {
		if verr == nil {
			verr = &domain.ValidationError{}
		}

		verr.Add("version", "Version is required")
	}

	up := domain.UpdateChequeParams{
		ID:           f.ID,
		Version:      f.Version,
		ChequeParams: p,
	}

	if createdAt, err := time.Parse(time.RFC3339Nano, f.CreatedAtUTC); err == nil {
		up.CreatedAtUTC = createdAt
	}

	return up, verr
}

// statusOption is one entry of a status drop-down.
type statusOption struct {
	Value    int    `json:"value"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

func statusOptions(selected string) []statusOption {
	opts := make([]statusOption, 0, len(domain.ChequeStatuses))

	for _, s := range domain.ChequeStatuses {
		v := strconv.Itoa(int(s))
		opts = append(opts, statusOption{
			Value:    int(s),
			Name:     s.String(),
			Selected: v == selected || s.String() == selected,
		})
	}

	return opts
}

// listRequest holds the list page query string.
type listRequest struct {
	Query  string `form:"q" json:"q"`
	Status string `form:"status" json:"status"`
	From   string `form:"from" json:"from"`
	To     string `form:"to" json:"to"`
}

func (r listRequest) filter() (domain.ChequeFilter, *domain.ValidationError) {
	verr := &domain.ValidationError{}
	f := domain.ChequeFilter{Query: r.Query}

	if status := strings.TrimSpace(r.Status); status != "" {
		s, err := domain.ParseChequeStatus(status)
		if err != nil {
			verr.Add("status", "Status has an unknown value")
		} else {
			f.Status = &s
		}
	}

	from, err := parseDate(r.From)
	if err != nil {
		verr.Add("from", "From must be a date (YYYY-MM-DD)")
	}

	f.IssuedFrom = from

	to, err := parseDate(r.To)
	if err != nil {
		verr.Add("to", "To must be a date (YYYY-MM-DD)")
	}

	f.DueTo = to

	if !verr.Empty() {
		return f, verr
	}

	return f, nil
}
