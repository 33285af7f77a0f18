package referral

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"swarmrewards/pkg/middleware"
	"swarmrewards/services/account"
	"swarmrewards/services/earning"
	"swarmrewards/services/testutil"
)

func newTestRouter(t *testing.T) (*gin.Engine, *account.Service) {
	t.Helper()

	db := testutil.NewTestDB(t, &account.Account{}, &earning.EarningRecord{}, &earning.LedgerTotal{}, &ReferralEdge{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	accounts := account.NewService(account.ServiceParams{DB: db, Node: node})
	earnings := earning.NewService(earning.ServiceParams{DB: db, Node: node})
	svc := NewService(ServiceParams{DB: db, Node: node, Accounts: accounts, Earnings: earnings})

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.Error())
	RegisterRoutes(engine, NewHandler(svc))

	return engine, accounts
}

// A code the system issues must pass its own verify boundary.
func TestVerifyAcceptsIssuedCodes(t *testing.T) {
	engine, accounts := newTestRouter(t)

	acct, err := accounts.Create(context.Background(), account.CreateParams{UserID: "r1", Username: "referrer"})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(acct.ReferralCode), 6)
	require.LessOrEqual(t, len(acct.ReferralCode), 10)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/referral/verify/"+acct.ReferralCode, nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result VerifyResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.True(t, result.Valid)
	require.Equal(t, "r1", result.Referrer.UserID)
}

func TestVerifyRejectsOutOfBoundsCode(t *testing.T) {
	engine, _ := newTestRouter(t)

	for _, code := range []string{"SHORT", "WAY-TOO-LONG-FOR-A-CODE"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/referral/verify/"+code, nil)
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	}
}
