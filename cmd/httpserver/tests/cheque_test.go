//go:build integration

package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"

	"github.com/go-petr/cheque-desk/internal/domain"
	"github.com/go-petr/cheque-desk/internal/integrationtest/helpers"
)

type chequeEnvelope struct {
	Data struct {
		Cheque domain.Cheque `json:"cheque"`
	} `json:"data"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

type listEnvelope struct {
	Data struct {
		Cheques []domain.Cheque `json:"cheques"`
	} `json:"data"`
	Error string `json:"error"`
}

func decodeCheque(t *testing.T, body []byte) chequeEnvelope {
	t.Helper()

	var res chequeEnvelope
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("json.Unmarshal() returned error: %v", err)
	}

	return res
}

func chequeForm(c domain.Cheque) url.Values {
	return url.Values{
		"number":     {c.Number},
		"payee_name": {c.PayeeName},
		"amount":     {c.Amount.StringFixed(2)},
		"currency":   {c.Currency},
		"issue_date": {c.IssueDate.Format("2006-01-02")},
		"due_date":   {c.DueDate.Format("2006-01-02")},
		"status":     {strconv.Itoa(int(c.Status))},
		"notes":      {c.Notes},
	}
}

func editForm(c domain.Cheque) url.Values {
	form := chequeForm(c)
	form.Set("id", strconv.FormatInt(c.ID, 10))
	form.Set("version", strconv.Itoa(int(c.Version)))
	form.Set("created_at_utc", c.CreatedAtUTC.Format(time.RFC3339Nano))

	return form
}

func chequePath(id int64, suffix string) string {
	return "/cheques/" + strconv.FormatInt(id, 10) + suffix
}

func TestChequeLifecycle(t *testing.T) {
	cleanDB(t)

	admin, password := helpers.SeedUser(t, server.DB, domain.RoleAdmin)
	authorize := login(t, admin.Username, password)

	issue := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	want := domain.Cheque{
		Number:    "CHQ-1001",
		PayeeName: "Bob Stone",
		Amount:    decimal.RequireFromString("1250.50"),
		Currency:  "usd",
		IssueDate: issue,
		DueDate:   issue.AddDate(0, 1, 0),
		Status:    domain.StatusIssued,
		Notes:     "rent",
	}

	// Create.
	rec := postForm(t, server, "/cheques", chequeForm(want), authorize)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /cheques status code = %v, want %v; body %s", rec.Code, http.StatusCreated, rec.Body)
	}

	created := decodeCheque(t, rec.Body.Bytes()).Data.Cheque
	want.Currency = "USD"
	want.Version = 1

	ignore := cmpopts.IgnoreFields(domain.Cheque{}, "ID", "CreatedAtUTC")
	if diff := cmp.Diff(want, created, ignore); diff != "" {
		t.Fatalf("created cheque mismatch (-want +got):\n%s", diff)
	}

	if created.ID == 0 || created.CreatedAtUTC.IsZero() {
		t.Fatalf("created cheque = %+v, want id and creation time set", created)
	}

	// A second cheque with the same number is rejected.
	dup := want
	dup.PayeeName = "Someone Else"

	rec = postForm(t, server, "/cheques", chequeForm(dup), authorize)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST /cheques duplicate status code = %v, want %v", rec.Code, http.StatusBadRequest)
	}

	if got := decodeCheque(t, rec.Body.Bytes()).Fields["number"]; got != domain.ErrNumberAlreadyExists.Error() {
		t.Errorf("number field error = %q, want %q", got, domain.ErrNumberAlreadyExists)
	}

	// List and search.
	helpers.SeedCheque(t, server.DB, helpers.RandomCheque())

	rec = get(t, server, "/cheques?q=Bob", authorize)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /cheques status code = %v, want %v", rec.Code, http.StatusOK)
	}

	var list listEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("json.Unmarshal() returned error: %v", err)
	}

	if len(list.Data.Cheques) != 1 || list.Data.Cheques[0].ID != created.ID {
		t.Fatalf("GET /cheques?q=Bob = %+v, want only cheque %d", list.Data.Cheques, created.ID)
	}

	// Details and print read the same record.
	for _, path := range []string{chequePath(created.ID, ""), chequePath(created.ID, "/print")} {
		rec = get(t, server, path, authorize)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s status code = %v, want %v", path, rec.Code, http.StatusOK)
		}

		if diff := cmp.Diff(created, decodeCheque(t, rec.Body.Bytes()).Data.Cheque); diff != "" {
			t.Errorf("GET %s mismatch (-want +got):\n%s", path, diff)
		}
	}

	// Update bumps the version and keeps the creation time.
	edit := created
	edit.Status = domain.StatusCleared
	edit.Amount = decimal.RequireFromString("99.99")
	edit.CreatedAtUTC = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

	rec = postForm(t, server, chequePath(created.ID, ""), editForm(edit), authorize)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST %s status code = %v, want %v; body %s", chequePath(created.ID, ""), rec.Code, http.StatusOK, rec.Body)
	}

	updated := decodeCheque(t, rec.Body.Bytes()).Data.Cheque

	if updated.Version != created.Version+1 {
		t.Errorf("updated version = %v, want %v", updated.Version, created.Version+1)
	}

	if !updated.CreatedAtUTC.Equal(created.CreatedAtUTC) {
		t.Errorf("updated CreatedAtUTC = %v, want %v", updated.CreatedAtUTC, created.CreatedAtUTC)
	}

	if updated.Status != domain.StatusCleared || !updated.Amount.Equal(edit.Amount) {
		t.Errorf("updated cheque = %+v, want status %v and amount %v", updated, domain.StatusCleared, edit.Amount)
	}

	// Saving the stale form is a conflict.
	rec = postForm(t, server, chequePath(created.ID, ""), editForm(created), authorize)
	if rec.Code != http.StatusConflict {
		t.Fatalf("stale update status code = %v, want %v", rec.Code, http.StatusConflict)
	}

	if got := decodeCheque(t, rec.Body.Bytes()).Error; got != domain.ErrVersionConflict.Error() {
		t.Errorf("stale update error = %q, want %q", got, domain.ErrVersionConflict)
	}

	// Delete twice, then the record is gone.
	for i := 0; i < 2; i++ {
		rec = postForm(t, server, chequePath(created.ID, "/delete"), url.Values{}, authorize)
		if rec.Code != http.StatusOK {
			t.Fatalf("delete attempt %d status code = %v, want %v", i+1, rec.Code, http.StatusOK)
		}
	}

	rec = get(t, server, chequePath(created.ID, ""), authorize)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET deleted cheque status code = %v, want %v", rec.Code, http.StatusNotFound)
	}

	// Updating the deleted record reports it gone.
	rec = postForm(t, server, chequePath(created.ID, ""), editForm(updated), authorize)
	if rec.Code != http.StatusConflict {
		t.Fatalf("update deleted status code = %v, want %v", rec.Code, http.StatusConflict)
	}

	if got := decodeCheque(t, rec.Body.Bytes()).Error; got != domain.ErrChequeGone.Error() {
		t.Errorf("update deleted error = %q, want %q", got, domain.ErrChequeGone)
	}
}

func TestChequePermissions(t *testing.T) {
	cleanDB(t)

	user, password := helpers.SeedUser(t, server.DB, domain.RoleUser)
	authorize := login(t, user.Username, password)

	cheque := helpers.SeedCheque(t, server.DB, helpers.RandomCheque())

	testCases := []struct {
		name           string
		method         string
		path           string
		wantStatusCode int
	}{
		{name: "List", method: http.MethodGet, path: "/cheques", wantStatusCode: http.StatusOK},
		{name: "Details", method: http.MethodGet, path: chequePath(cheque.ID, ""), wantStatusCode: http.StatusOK},
		{name: "Print", method: http.MethodGet, path: chequePath(cheque.ID, "/print"), wantStatusCode: http.StatusOK},
		{name: "NewForm", method: http.MethodGet, path: "/cheques/new", wantStatusCode: http.StatusForbidden},
		{name: "Create", method: http.MethodPost, path: "/cheques", wantStatusCode: http.StatusForbidden},
		{name: "EditForm", method: http.MethodGet, path: chequePath(cheque.ID, "/edit"), wantStatusCode: http.StatusForbidden},
		{name: "Update", method: http.MethodPost, path: chequePath(cheque.ID, ""), wantStatusCode: http.StatusForbidden},
		{name: "DeleteForm", method: http.MethodGet, path: chequePath(cheque.ID, "/delete"), wantStatusCode: http.StatusForbidden},
		{name: "Delete", method: http.MethodPost, path: chequePath(cheque.ID, "/delete"), wantStatusCode: http.StatusForbidden},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			var code int

			if tc.method == http.MethodPost {
				code = postForm(t, server, tc.path, editForm(cheque), authorize).Code
			} else {
				code = get(t, server, tc.path, authorize).Code
			}

			if code != tc.wantStatusCode {
				t.Errorf("%s %s status code = %v, want %v", tc.method, tc.path, code, tc.wantStatusCode)
			}
		})
	}

	// The forbidden delete left the record in place.
	if code := get(t, server, chequePath(cheque.ID, ""), authorize).Code; code != http.StatusOK {
		t.Errorf("GET after forbidden delete status code = %v, want %v", code, http.StatusOK)
	}
}
