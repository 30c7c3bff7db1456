// Package chequerepo manages repository layer of cheques.
package chequerepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-petr/cheque-desk/internal/domain"
	"github.com/go-petr/cheque-desk/pkg/dbpkg"
	"github.com/go-petr/cheque-desk/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

const dateLayout = "2006-01-02"

// RepoPGS facilitates cheque repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns cheque RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const columns = `id, number, payee_name, amount, currency, issue_date, due_date, status, notes, version, created_at_utc`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCheque(row scanner) (domain.Cheque, error) {
	var (
		c     domain.Cheque
		notes sql.NullString
	)

	err := row.Scan(
		&c.ID,
		&c.Number,
		&c.PayeeName,
		&c.Amount,
		&c.Currency,
		&c.IssueDate,
		&c.DueDate,
		&c.Status,
		&notes,
		&c.Version,
		&c.CreatedAtUTC,
	)

	c.Notes = notes.String
	c.IssueDate = domain.DateOnly(c.IssueDate)
	c.DueDate = domain.DateOnly(c.DueDate)
	c.CreatedAtUTC = c.CreatedAtUTC.UTC()

	return c, err
}

// mapWriteError translates constraint violations into domain errors.
func mapWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		if pqErr.Constraint == "cheques_number_key" {
			return domain.ErrNumberAlreadyExists
		}
	}

	return errorspkg.ErrInternal
}

const createQuery = `
INSERT INTO cheques (
    number, payee_name, amount, currency, issue_date, due_date, status, notes, created_at_utc
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9
) RETURNING ` + columns

// Create inserts the cheque and then returns it with the generated id.
func (r *RepoPGS) Create(ctx context.Context, c domain.Cheque) (domain.Cheque, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		c.Number,
		c.PayeeName,
		c.Amount,
		c.Currency,
		c.IssueDate.Format(dateLayout),
		c.DueDate.Format(dateLayout),
		c.Status,
		c.Notes,
		c.CreatedAtUTC,
	)

	created, err := scanCheque(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, number=%q)", c.Number)
		return domain.Cheque{}, mapWriteError(err)
	}

	return created, nil
}

const getQuery = `
SELECT ` + columns + `
FROM cheques
WHERE id = $1
`

// Get returns the cheque with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Cheque, error) {
	l := zerolog.Ctx(ctx)

	c, err := scanCheque(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Cheque{}, domain.ErrChequeNotFound
		}

		l.Error().Err(err).Send()

		return domain.Cheque{}, errorspkg.ErrInternal
	}

	return c, nil
}

// buildListQuery assembles the list statement; every filter adds one conjunct.
func buildListQuery(f domain.ChequeFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)

	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Query != "" {
		p := arg(f.Query)
		conds = append(conds, fmt.Sprintf("(strpos(number, %s) > 0 OR strpos(payee_name, %s) > 0)", p, p))
	}

	if f.Status != nil {
		conds = append(conds, "status = "+arg(int(*f.Status)))
	}

	if !f.IssuedFrom.IsZero() {
		conds = append(conds, "issue_date >= "+arg(f.IssuedFrom.Format(dateLayout)))
	}

	if !f.DueTo.IsZero() {
		conds = append(conds, "due_date <= "+arg(f.DueTo.Format(dateLayout)))
	}

	var sb strings.Builder

	sb.WriteString("SELECT " + columns + "\nFROM cheques\n")

	if len(conds) > 0 {
		sb.WriteString("WHERE " + strings.Join(conds, "\n  AND ") + "\n")
	}

	sb.WriteString("ORDER BY issue_date DESC, id DESC")

	return sb.String(), args
}

// List returns every cheque that matches the filter, newest issue date first.
func (r *RepoPGS) List(ctx context.Context, f domain.ChequeFilter) ([]domain.Cheque, error) {
	l := zerolog.Ctx(ctx)

	query, args := buildListQuery(f)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Cheque{}

	for rows.Next() {
		c, err := scanCheque(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, c)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const updateQuery = `
UPDATE cheques
SET
    number = $2,
    payee_name = $3,
    amount = $4,
    currency = $5,
    issue_date = $6,
    due_date = $7,
    status = $8,
    notes = NULLIF($9, ''),
    created_at_utc = $10,
    version = version + 1
WHERE id = $1 AND version = $11
RETURNING ` + columns

// Update overwrites the cheque if its stored version still equals c.Version.
//
// It returns domain.ErrVersionConflict when no row matched the id and version pair.
func (r *RepoPGS) Update(ctx context.Context, c domain.Cheque) (domain.Cheque, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, updateQuery,
		c.ID,
		c.Number,
		c.PayeeName,
		c.Amount,
		c.Currency,
		c.IssueDate.Format(dateLayout),
		c.DueDate.Format(dateLayout),
		c.Status,
		c.Notes,
		c.CreatedAtUTC,
		c.Version,
	)

	updated, err := scanCheque(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			l.Warn().Int64("id", c.ID).Int32("version", c.Version).Msg("cheque update matched no row")
			return domain.Cheque{}, domain.ErrVersionConflict
		}

		l.Error().Err(err).Msgf("Update(ctx, id=%d)", c.ID)

		return domain.Cheque{}, mapWriteError(err)
	}

	return updated, nil
}

const deleteQuery = `
DELETE FROM cheques
WHERE id = $1
`

// Delete removes the cheque with the given id. Deleting a missing cheque is not an error.
func (r *RepoPGS) Delete(ctx context.Context, id int64) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, deleteQuery, id)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		l.Debug().Int64("id", id).Msg("cheque to delete was not found")
	}

	return nil
}

const existsQuery = `
SELECT EXISTS (SELECT 1 FROM cheques WHERE id = $1)
`

// Exists reports whether a cheque with the given id is stored.
func (r *RepoPGS) Exists(ctx context.Context, id int64) (bool, error) {
	l := zerolog.Ctx(ctx)

	var exists bool
	if err := r.db.QueryRowContext(ctx, existsQuery, id).Scan(&exists); err != nil {
		l.Error().Err(err).Send()
		return false, errorspkg.ErrInternal
	}

	return exists, nil
}

const numberExistsQuery = `
SELECT EXISTS (SELECT 1 FROM cheques WHERE number = $1 AND id <> $2)
`

// NumberExists reports whether a cheque other than excludeID already uses number.
func (r *RepoPGS) NumberExists(ctx context.Context, number string, excludeID int64) (bool, error) {
	l := zerolog.Ctx(ctx)

	var exists bool
	if err := r.db.QueryRowContext(ctx, numberExistsQuery, number, excludeID).Scan(&exists); err != nil {
		l.Error().Err(err).Send()
		return false, errorspkg.ErrInternal
	}

	return exists, nil
}
