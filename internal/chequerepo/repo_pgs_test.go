//go:build integration

package chequerepo

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/go-petr/cheque-desk/db/migration"
	"github.com/go-petr/cheque-desk/internal/domain"
	"github.com/go-petr/cheque-desk/internal/integrationtest"
	"github.com/go-petr/cheque-desk/pkg/configpkg"
	"github.com/go-petr/cheque-desk/pkg/randompkg"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	_ "github.com/lib/pq"
)

var config configpkg.Config

func TestMain(m *testing.M) {
	var err error

	config, err = configpkg.Load("../../configs")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	if _, err := migration.Up(config.DBDriver, config.DBSource); err != nil {
		log.Fatal("cannot migrate db:", err)
	}

	os.Exit(m.Run())
}

func randomCheque() domain.Cheque {
	issue := randompkg.Date()

	return domain.Cheque{
		Number:       randompkg.ChequeNumber(),
		PayeeName:    randompkg.PayeeName(),
		Amount:       randompkg.MoneyAmountBetween(1, 10_000),
		Currency:     randompkg.Currency(),
		IssueDate:    issue,
		DueDate:      issue.AddDate(0, 1, 0),
		Status:       domain.StatusDraft,
		Notes:        randompkg.String(20),
		CreatedAtUTC: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func createRandomCheque(t *testing.T, repo *RepoPGS) domain.Cheque {
	t.Helper()

	arg := randomCheque()

	got, err := repo.Create(context.Background(), arg)
	require.NoError(t, err)
	require.NotZero(t, got.ID)
	require.Equal(t, int32(1), got.Version)

	ignore := cmpopts.IgnoreFields(domain.Cheque{}, "ID", "Version")
	if diff := cmp.Diff(arg, got, ignore, cmpopts.EquateApproxTime(time.Millisecond)); diff != "" {
		t.Errorf("repo.Create() mismatch (-want +got):\n%s", diff)
	}

	return got
}

func TestCreate(t *testing.T) {
	tx := integrationtest.SetupTX(t, config.DBDriver, config.DBSource)
	repo := NewRepoPGS(tx)

	createRandomCheque(t, repo)
}

func TestCreateDuplicateNumber(t *testing.T) {
	tx := integrationtest.SetupTX(t, config.DBDriver, config.DBSource)
	repo := NewRepoPGS(tx)

	existing := createRandomCheque(t, repo)

	arg := randomCheque()
	arg.Number = existing.Number

	got, err := repo.Create(context.Background(), arg)
	require.ErrorIs(t, err, domain.ErrNumberAlreadyExists)
	require.Empty(t, got)
}

func TestCreateEmptyNotesStoredAsNull(t *testing.T) {
	tx := integrationtest.SetupTX(t, config.DBDriver, config.DBSource)
	repo := NewRepoPGS(tx)

	arg := randomCheque()
	arg.Notes = ""

	got, err := repo.Create(context.Background(), arg)
	require.NoError(t, err)

	var isNull bool
	err = tx.QueryRow(`SELECT notes IS NULL FROM cheques WHERE id = $1`, got.ID).Scan(&isNull)
	require.NoError(t, err)
	require.True(t, isNull)
	require.Empty(t, got.Notes)
}

func TestGet(t *testing.T) {
	tx := integrationtest.SetupTX(t, config.DBDriver, config.DBSource)
	repo := NewRepoPGS(tx)

	want := createRandomCheque(t, repo)

	got, err := repo.Get(context.Background(), want.ID)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("repo.Get(%d) mismatch (-want +got):\n%s", want.ID, diff)
	}

	_, err = repo.Get(context.Background(), want.ID+1_000_000)
	require.ErrorIs(t, err, domain.ErrChequeNotFound)
}

func TestList(t *testing.T) {
	tx := integrationtest.SetupTX(t, config.DBDriver, config.DBSource)
	repo := NewRepoPGS(tx)
	ctx := context.Background()

	_, err := tx.Exec(`DELETE FROM cheques`)
	require.NoError(t, err)

	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return d
	}

	seed := func(number, payee string, status domain.ChequeStatus, issue, due string) domain.Cheque {
		c := randomCheque()
		c.Number, c.PayeeName, c.Status = number, payee, status
		c.IssueDate, c.DueDate = day(issue), day(due)

		created, err := repo.Create(ctx, c)
		require.NoError(t, err)

		return created
	}

	a1 := seed("A1", "Bob Stone", domain.StatusDraft, "2024-01-01", "2024-02-01")
	b2 := seed("B2", "Alice", domain.StatusCleared, "2024-03-01", "2024-03-15")
	c3 := seed("C3-BOB", "Carol", domain.StatusCleared, "2024-02-01", "2024-04-01")

	cleared := domain.StatusCleared

	testCases := []struct {
		name    string
		filter  domain.ChequeFilter
		wantIDs []int64
	}{
		{name: "All", filter: domain.ChequeFilter{}, wantIDs: []int64{b2.ID, c3.ID, a1.ID}},
		{name: "QueryPayee", filter: domain.ChequeFilter{Query: "Bob"}, wantIDs: []int64{a1.ID}},
		{name: "QueryIsCaseSensitive", filter: domain.ChequeFilter{Query: "BOB"}, wantIDs: []int64{c3.ID}},
		{name: "QueryWildcardIsLiteral", filter: domain.ChequeFilter{Query: "%"}, wantIDs: []int64{}},
		{name: "Status", filter: domain.ChequeFilter{Status: &cleared}, wantIDs: []int64{b2.ID, c3.ID}},
		{name: "IssuedFrom", filter: domain.ChequeFilter{IssuedFrom: day("2024-02-01")}, wantIDs: []int64{b2.ID, c3.ID}},
		{name: "DueTo", filter: domain.ChequeFilter{DueTo: day("2024-03-15")}, wantIDs: []int64{b2.ID, a1.ID}},
		{
			name:    "Conjunctive",
			filter:  domain.ChequeFilter{Status: &cleared, DueTo: day("2024-03-31")},
			wantIDs: []int64{b2.ID},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.List(ctx, tc.filter)
			require.NoError(t, err)

			gotIDs := make([]int64, 0, len(got))
			for _, c := range got {
				gotIDs = append(gotIDs, c.ID)
			}

			if diff := cmp.Diff(tc.wantIDs, gotIDs); diff != "" {
				t.Errorf("repo.List(%+v) ids mismatch (-want +got):\n%s", tc.filter, diff)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	tx := integrationtest.SetupTX(t, config.DBDriver, config.DBSource)
	repo := NewRepoPGS(tx)
	ctx := context.Background()

	original := createRandomCheque(t, repo)

	changed := original
	changed.PayeeName = randompkg.PayeeName()
	changed.Status = domain.StatusCleared

	got, err := repo.Update(ctx, changed)
	require.NoError(t, err)
	require.Equal(t, original.Version+1, got.Version)
	require.Equal(t, changed.PayeeName, got.PayeeName)
	require.Equal(t, domain.StatusCleared, got.Status)
	require.True(t, original.CreatedAtUTC.Equal(got.CreatedAtUTC))

	// The editor still holds the old version.
	_, err = repo.Update(ctx, changed)
	require.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestUpdateDuplicateNumber(t *testing.T) {
	tx := integrationtest.SetupTX(t, config.DBDriver, config.DBSource)
	repo := NewRepoPGS(tx)

	first := createRandomCheque(t, repo)
	second := createRandomCheque(t, repo)

	second.Number = first.Number

	_, err := repo.Update(context.Background(), second)
	require.ErrorIs(t, err, domain.ErrNumberAlreadyExists)
}

func TestDeleteAndExists(t *testing.T) {
	tx := integrationtest.SetupTX(t, config.DBDriver, config.DBSource)
	repo := NewRepoPGS(tx)
	ctx := context.Background()

	c := createRandomCheque(t, repo)

	exists, err := repo.Exists(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, repo.Delete(ctx, c.ID))
	require.NoError(t, repo.Delete(ctx, c.ID))

	exists, err = repo.Exists(ctx, c.ID)
	require.NoError(t, err)
	require.False(t, exists)

	_, err = repo.Update(ctx, c)
	require.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestNumberExists(t *testing.T) {
	tx := integrationtest.SetupTX(t, config.DBDriver, config.DBSource)
	repo := NewRepoPGS(tx)
	ctx := context.Background()

	c := createRandomCheque(t, repo)

	exists, err := repo.NumberExists(ctx, c.Number, 0)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.NumberExists(ctx, c.Number, c.ID)
	require.NoError(t, err)
	require.False(t, exists)

	exists, err = repo.NumberExists(ctx, randompkg.ChequeNumber(), 0)
	require.NoError(t, err)
	require.False(t, exists)
}
