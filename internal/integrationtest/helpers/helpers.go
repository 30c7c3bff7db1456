// Package helpers seeds users and cheques for end-to-end server tests.
package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/go-petr/cheque-desk/internal/chequerepo"
	"github.com/go-petr/cheque-desk/internal/domain"
	"github.com/go-petr/cheque-desk/internal/userrepo"
	"github.com/go-petr/cheque-desk/pkg/dbpkg"
	"github.com/go-petr/cheque-desk/pkg/passpkg"
	"github.com/go-petr/cheque-desk/pkg/randompkg"
)

// SeedUser stores a user with the given role and returns it along with its plain password.
func SeedUser(t *testing.T, db dbpkg.SQLInterface, role string) (domain.User, string) {
	t.Helper()

	password := randompkg.String(10)

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		t.Fatalf("passpkg.Hash() returned error: %v", err)
	}

	user, err := userrepo.NewRepoPGS(db).Create(context.Background(), domain.CreateUserParams{
		Username:       randompkg.Username(),
		HashedPassword: hashedPassword,
		FullName:       randompkg.PayeeName(),
		Role:           role,
	})
	if err != nil {
		t.Fatalf("userrepo.Create() returned error: %v", err)
	}

	return user, password
}

// RandomCheque returns an unsaved cheque with random field values.
func RandomCheque() domain.Cheque {
	issue := randompkg.Date()

	return domain.Cheque{
		Number:       randompkg.ChequeNumber(),
		PayeeName:    randompkg.PayeeName(),
		Amount:       randompkg.MoneyAmountBetween(1, 10_000),
		Currency:     randompkg.Currency(),
		IssueDate:    issue,
		DueDate:      issue.AddDate(0, 1, 0),
		Status:       domain.StatusIssued,
		CreatedAtUTC: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// SeedCheque stores c and returns it with the generated id and version.
func SeedCheque(t *testing.T, db dbpkg.SQLInterface, c domain.Cheque) domain.Cheque {
	t.Helper()

	saved, err := chequerepo.NewRepoPGS(db).Create(context.Background(), c)
	if err != nil {
		t.Fatalf("chequerepo.Create() returned error: %v", err)
	}

	return saved
}
