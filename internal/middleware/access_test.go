package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/cheque-desk/internal/domain"
	"github.com/go-petr/cheque-desk/pkg/randompkg"
	"github.com/go-petr/cheque-desk/pkg/tokenpkg"
	"github.com/go-petr/cheque-desk/pkg/web"
)

func TestRequirePermission(t *testing.T) {
	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker() returned error: %v", err)
	}

	admin := []string{domain.RoleAdmin}
	user := []string{domain.RoleUser}

	testCases := []struct {
		name           string
		op             domain.Operation
		roles          []string
		wantStatusCode int
	}{
		{name: "UserList", op: domain.OpList, roles: user, wantStatusCode: http.StatusOK},
		{name: "UserDetails", op: domain.OpDetails, roles: user, wantStatusCode: http.StatusOK},
		{name: "UserPrint", op: domain.OpPrint, roles: user, wantStatusCode: http.StatusOK},
		{name: "UserCreate", op: domain.OpCreate, roles: user, wantStatusCode: http.StatusForbidden},
		{name: "UserUpdate", op: domain.OpUpdate, roles: user, wantStatusCode: http.StatusForbidden},
		{name: "UserDelete", op: domain.OpDelete, roles: user, wantStatusCode: http.StatusForbidden},
		{name: "NoRolesCreate", op: domain.OpCreate, roles: nil, wantStatusCode: http.StatusForbidden},
		{name: "AdminCreate", op: domain.OpCreate, roles: admin, wantStatusCode: http.StatusOK},
		{name: "AdminDelete", op: domain.OpDelete, roles: admin, wantStatusCode: http.StatusOK},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			gin.SetMode(gin.TestMode)
			server := gin.New()

			called := false
			server.GET("/op", AuthMiddleware(tokenMaker), RequirePermission(tc.op), func(gctx *gin.Context) {
				called = true
				gctx.JSON(http.StatusOK, web.Response{})
			})

			request := httptest.NewRequest(http.MethodGet, "/op", nil)
			request.Header.Set("Accept", "application/json")

			if err := AddAuthorization(request, tokenMaker, AuthTypeBearer, "user", tc.roles, time.Minute); err != nil {
				t.Fatalf("AddAuthorization() returned error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)

			if recorder.Code != tc.wantStatusCode {
				t.Errorf("recorder.Code = %v, want %v", recorder.Code, tc.wantStatusCode)
			}

			if wantCalled := tc.wantStatusCode == http.StatusOK; called != wantCalled {
				t.Errorf("handler called = %v, want %v", called, wantCalled)
			}

			if tc.wantStatusCode == http.StatusForbidden {
				var got web.Response
				if err := json.NewDecoder(recorder.Body).Decode(&got); err != nil {
					t.Fatalf("Decoding response body error: %v", err)
				}

				if got.Error != ErrForbidden.Error() {
					t.Errorf("got.Error = %q, want %q", got.Error, ErrForbidden.Error())
				}
			}
		})
	}
}

func TestPage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	gctx, _ := gin.CreateTestContext(httptest.NewRecorder())

	res := Page(gctx, "Cheques")
	if res.Username != "" || res.IsAdmin {
		t.Errorf("Page() without payload = %+v, want anonymous", res)
	}

	gctx.Set(AuthPayloadKey, &tokenpkg.Payload{Username: "root", Roles: []string{domain.RoleAdmin}})

	res = Page(gctx, "Cheques")
	if res.Title != "Cheques" || res.Username != "root" || !res.IsAdmin {
		t.Errorf("Page() = %+v, want admin root", res)
	}
}
