package chequeservice

import (
	"errors"
	"strings"

	"github.com/go-petr/cheque-desk/internal/domain"
	"github.com/go-petr/cheque-desk/pkg/currencypkg"
	"github.com/go-petr/cheque-desk/pkg/errorspkg"
	"github.com/go-petr/cheque-desk/pkg/validatorpkg"
	"github.com/go-playground/validator/v10"
)

// applyDefaults trims the text fields and fills currency and dates left empty.
func (s *Service) applyDefaults(p *domain.ChequeParams) {
	p.Number = strings.TrimSpace(p.Number)
	p.PayeeName = strings.TrimSpace(p.PayeeName)
	p.Notes = strings.TrimSpace(p.Notes)

	p.Currency = currencypkg.Normalize(p.Currency)
	if p.Currency == "" {
		p.Currency = currencypkg.Default
	}

	today := domain.DateOnly(s.now())

	if p.IssueDate.IsZero() {
		p.IssueDate = today
	} else {
		p.IssueDate = domain.DateOnly(p.IssueDate)
	}

	if p.DueDate.IsZero() {
		p.DueDate = today
	} else {
		p.DueDate = domain.DateOnly(p.DueDate)
	}
}

// validateParams returns a *domain.ValidationError listing every invalid field, or nil.
// p is a domain.ChequeParams or a domain.UpdateChequeParams.
func (s *Service) validateParams(p interface{}) error {
	err := s.validate.Struct(p)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return errorspkg.ErrInternal
	}

	verr := &domain.ValidationError{}
	for _, fe := range ve {
		verr.Add(fe.Field(), validatorpkg.GetErrorMsg(fe))
	}

	return verr
}
