package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/moneytransfers/transfers_app/internal/adapters/database/memory"
	"github.com/moneytransfers/transfers_app/internal/core/services"
	"github.com/moneytransfers/transfers_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneytransfers/transfers_app/internal/handlers"
)

// setupTestRouter wires the full stack over the in-memory store, so handler
// tests cover routing, binding, status mapping and the service layer together.
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	transfers := memory.NewTransferRepository()
	accounts := memory.NewAccountRepository(transfers)
	container := services.NewServiceContainer(accounts, transfers, 0)

	r := gin.New()
	handlers.RegisterRoutes(r, container)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createTestAccount(t *testing.T, r *gin.Engine, number string, balance int64) dto.AccountResponse {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/accounts", dto.CreateAccountRequest{
		Number:  number,
		Balance: decimal.NewFromInt(balance),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.AccountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestCreateAccount_DuplicateNumberConflicts(t *testing.T) {
	r := setupTestRouter(t)

	createTestAccount(t, r, "ACC-1", 100)

	w := doJSON(t, r, http.MethodPost, "/accounts", dto.CreateAccountRequest{
		Number:  "ACC-1",
		Balance: decimal.NewFromInt(5),
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateAccount_MissingNumberRejected(t *testing.T) {
	r := setupTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/accounts", gin.H{"balance": "10"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetAccount_NotFound(t *testing.T) {
	r := setupTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/accounts/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAccount_NonNumericIDRejected(t *testing.T) {
	r := setupTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/accounts/abc", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCreateTransfer_MovesFundsBetweenAccounts(t *testing.T) {
	r := setupTestRouter(t)

	from := createTestAccount(t, r, "ACC-1", 300)
	to := createTestAccount(t, r, "ACC-2", 400)

	w := doJSON(t, r, http.MethodPost, "/transfers", dto.CreateTransferRequest{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(100),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var transfer dto.TransferResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &transfer))
	assert.Equal(t, int64(1), transfer.ID)
	assert.Equal(t, from.ID, transfer.FromAccount.ID)
	assert.Equal(t, "ACC-1", transfer.FromAccount.Number)
	assert.Equal(t, to.ID, transfer.ToAccount.ID)
	assert.True(t, transfer.Amount.Equal(decimal.NewFromInt(100)))
	assert.False(t, transfer.Timestamp.IsZero())

	// Balances reflect the committed transfer.
	wFrom := doJSON(t, r, http.MethodGet, "/accounts/1", nil)
	require.Equal(t, http.StatusOK, wFrom.Code)
	var gotFrom dto.AccountResponse
	require.NoError(t, json.Unmarshal(wFrom.Body.Bytes(), &gotFrom))
	assert.True(t, gotFrom.Balance.Equal(decimal.NewFromInt(200)))

	wTo := doJSON(t, r, http.MethodGet, "/accounts/2", nil)
	require.Equal(t, http.StatusOK, wTo.Code)
	var gotTo dto.AccountResponse
	require.NoError(t, json.Unmarshal(wTo.Body.Bytes(), &gotTo))
	assert.True(t, gotTo.Balance.Equal(decimal.NewFromInt(500)))
}

func TestCreateTransfer_InsufficientFunds(t *testing.T) {
	r := setupTestRouter(t)

	from := createTestAccount(t, r, "ACC-1", 300)
	to := createTestAccount(t, r, "ACC-2", 400)

	w := doJSON(t, r, http.MethodPost, "/transfers", dto.CreateTransferRequest{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(10000),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Insufficient funds", body["error"])
}

func TestCreateTransfer_SelfTransferRejected(t *testing.T) {
	r := setupTestRouter(t)

	acct := createTestAccount(t, r, "ACC-1", 300)

	w := doJSON(t, r, http.MethodPost, "/transfers", dto.CreateTransferRequest{
		FromAccountID: acct.ID,
		ToAccountID:   acct.ID,
		Amount:        decimal.NewFromInt(10),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCreateTransfer_UnknownAccount(t *testing.T) {
	r := setupTestRouter(t)

	from := createTestAccount(t, r, "ACC-1", 300)

	w := doJSON(t, r, http.MethodPost, "/transfers", dto.CreateTransferRequest{
		FromAccountID: from.ID,
		ToAccountID:   99,
		Amount:        decimal.NewFromInt(10),
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateTransfer_NonPositiveAmountRejected(t *testing.T) {
	r := setupTestRouter(t)

	from := createTestAccount(t, r, "ACC-1", 300)
	to := createTestAccount(t, r, "ACC-2", 400)

	w := doJSON(t, r, http.MethodPost, "/transfers", gin.H{
		"fromAccountID": from.ID,
		"toAccountID":   to.ID,
		"amount":        "-5",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetTransfer_NotFound(t *testing.T) {
	r := setupTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/transfers/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAccountTransfers_MostRecentFirst(t *testing.T) {
	r := setupTestRouter(t)

	a := createTestAccount(t, r, "ACC-1", 1000)
	b := createTestAccount(t, r, "ACC-2", 1000)

	for _, amount := range []int64{10, 20} {
		w := doJSON(t, r, http.MethodPost, "/transfers", dto.CreateTransferRequest{
			FromAccountID: a.ID,
			ToAccountID:   b.ID,
			Amount:        decimal.NewFromInt(amount),
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/accounts/1/transfers", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ListTransfersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Transfers, 2)
	assert.Equal(t, int64(2), resp.Transfers[0].ID)
	assert.Equal(t, int64(1), resp.Transfers[1].ID)

	wMissing := doJSON(t, r, http.MethodGet, "/accounts/99/transfers", nil)
	assert.Equal(t, http.StatusNotFound, wMissing.Code)
}

func TestListTransfers_AscendingByID(t *testing.T) {
	r := setupTestRouter(t)

	a := createTestAccount(t, r, "ACC-1", 1000)
	b := createTestAccount(t, r, "ACC-2", 1000)

	for _, amount := range []int64{5, 15, 25} {
		w := doJSON(t, r, http.MethodPost, "/transfers", dto.CreateTransferRequest{
			FromAccountID: a.ID,
			ToAccountID:   b.ID,
			Amount:        decimal.NewFromInt(amount),
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/transfers", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ListTransfersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Transfers, 3)
	for i, tr := range resp.Transfers {
		assert.Equal(t, int64(i+1), tr.ID)
	}
}

func TestListAccounts_ReturnsAllInCreationOrder(t *testing.T) {
	r := setupTestRouter(t)

	createTestAccount(t, r, "ACC-2", 10)
	createTestAccount(t, r, "ACC-1", 20)

	w := doJSON(t, r, http.MethodGet, "/accounts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ListAccountsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Accounts, 2)
	assert.Equal(t, "ACC-2", resp.Accounts[0].Number)
	assert.Equal(t, "ACC-1", resp.Accounts[1].Number)
}
