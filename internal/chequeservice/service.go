// Package chequeservice manages business logic layer of cheques.
package chequeservice

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-petr/cheque-desk/internal/domain"
	"github.com/go-petr/cheque-desk/pkg/validatorpkg"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by cheque service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package chequeservice
type Repo interface {
	Create(ctx context.Context, c domain.Cheque) (domain.Cheque, error)
	Get(ctx context.Context, id int64) (domain.Cheque, error)
	List(ctx context.Context, f domain.ChequeFilter) ([]domain.Cheque, error)
	Update(ctx context.Context, c domain.Cheque) (domain.Cheque, error)
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
	NumberExists(ctx context.Context, number string, excludeID int64) (bool, error)
}

// Service facilitates cheque service layer logic.
type Service struct {
	repo     Repo
	validate *validator.Validate
	now      func() time.Time
}

// New returns cheque service struct to manage cheque bussines logic.
func New(cr Repo) *Service {
	return &Service{
		repo:     cr,
		validate: validatorpkg.New(),
		now:      time.Now,
	}
}

// List returns the cheques matching f, newest issue date first.
func (s *Service) List(ctx context.Context, f domain.ChequeFilter) ([]domain.Cheque, error) {
	if strings.TrimSpace(f.Query) == "" {
		f.Query = ""
	}

	if !f.IssuedFrom.IsZero() {
		f.IssuedFrom = domain.DateOnly(f.IssuedFrom)
	}

	if !f.DueTo.IsZero() {
		f.DueTo = domain.DateOnly(f.DueTo)
	}

	cheques, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	return cheques, nil
}

// Get returns the cheque with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Cheque, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Cheque{}, err
	}

	return c, nil
}

// Print returns the cheque with the given id for the printable view.
func (s *Service) Print(ctx context.Context, id int64) (domain.Cheque, error) {
	return s.Get(ctx, id)
}

// Create validates p and stores a new cheque stamped with the current UTC time.
func (s *Service) Create(ctx context.Context, p domain.ChequeParams) (domain.Cheque, error) {
	l := zerolog.Ctx(ctx)

	s.applyDefaults(&p)

	if err := s.validateParams(p); err != nil {
		return domain.Cheque{}, err
	}

	taken, err := s.repo.NumberExists(ctx, p.Number, 0)
	if err != nil {
		return domain.Cheque{}, err
	}

	if taken {
		l.Info().Str("number", p.Number).Msg("cheque number already exists")
		return domain.Cheque{}, numberTaken()
	}

	c := newCheque(p)
	c.CreatedAtUTC = s.now().UTC()

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		if errors.Is(err, domain.ErrNumberAlreadyExists) {
			return domain.Cheque{}, numberTaken()
		}

		return domain.Cheque{}, err
	}

	return created, nil
}

// Update validates p and overwrites the cheque identified by routeID.
//
// The stored creation timestamp always wins over the one in p. A save that
// matches no row is reported as domain.ErrChequeDeleted when the cheque is
// gone and as domain.ErrVersionConflict otherwise.
func (s *Service) Update(ctx context.Context, routeID int64, p domain.UpdateChequeParams) (domain.Cheque, error) {
	l := zerolog.Ctx(ctx)

	if p.ID != routeID {
		l.Info().Int64("route_id", routeID).Int64("id", p.ID).Msg("cheque id mismatch")
		return domain.Cheque{}, domain.NewValidationError("", domain.ErrIDMismatch.Error())
	}

	s.applyDefaults(&p.ChequeParams)

	if err := s.validateParams(p); err != nil {
		return domain.Cheque{}, err
	}

	original, err := s.repo.Get(ctx, p.ID)
	if err != nil {
		if errors.Is(err, domain.ErrChequeNotFound) {
			return domain.Cheque{}, domain.ErrChequeGone
		}

		return domain.Cheque{}, err
	}

	taken, err := s.repo.NumberExists(ctx, p.Number, p.ID)
	if err != nil {
		return domain.Cheque{}, err
	}

	if taken {
		return domain.Cheque{}, numberTaken()
	}

	c := newCheque(p.ChequeParams)
	c.ID = p.ID
	c.Version = p.Version
	c.CreatedAtUTC = original.CreatedAtUTC

	updated, err := s.repo.Update(ctx, c)
	if err == nil {
		return updated, nil
	}

	switch {
	case errors.Is(err, domain.ErrNumberAlreadyExists):
		return domain.Cheque{}, numberTaken()
	case errors.Is(err, domain.ErrVersionConflict):
		exists, existsErr := s.repo.Exists(ctx, p.ID)
		if existsErr != nil {
			return domain.Cheque{}, existsErr
		}

		if !exists {
			return domain.Cheque{}, domain.ErrChequeDeleted
		}

		return domain.Cheque{}, domain.ErrVersionConflict
	}

	return domain.Cheque{}, err
}

// Delete removes the cheque with the given id. A missing cheque is not an error.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func newCheque(p domain.ChequeParams) domain.Cheque {
	return domain.Cheque{
		Number:    p.Number,
		PayeeName: p.PayeeName,
		Amount:    p.Amount,
		Currency:  p.Currency,
		IssueDate: p.IssueDate,
		DueDate:   p.DueDate,
		Status:    p.Status,
		Notes:     p.Notes,
	}
}

func numberTaken() *domain.ValidationError {
	return domain.NewValidationError("number", domain.ErrNumberAlreadyExists.Error())
}
