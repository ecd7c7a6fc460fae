package dao

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
	"github.com/R3E-Network/payee_manager/internal/app/services/payees"
	"github.com/R3E-Network/payee_manager/internal/app/storage/memory"
	svcerrors "github.com/R3E-Network/payee_manager/internal/errors"
	"github.com/R3E-Network/payee_manager/internal/httputil"
	"github.com/R3E-Network/payee_manager/pkg/logger"
)

func quietLogger() *logger.Logger {
	log := logger.NewDefault("dao-test")
	log.SetOutput(io.Discard)
	return log
}

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	listed := []payee.Payee{
		{ID: "1", PayeeName: "Acme", Address: payee.Address{City: "Denver", State: "CO"}},
		{ID: "2", PayeeName: "Bolt", Address: payee.Address{City: "Austin", State: "TX"}},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/payees":
			if q := r.URL.Query().Get("state"); q != "" {
				httputil.WriteJSON(w, http.StatusOK, listed[1:])
				return
			}
			httputil.WriteJSON(w, http.StatusOK, listed)
		case r.Method == http.MethodPost && r.URL.Path == "/api/payees":
			var p payee.Payee
			if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
				t.Errorf("decode body: %v", err)
			}
			if p.PayeeName == "" {
				httputil.WriteErrorResponse(w, r, http.StatusBadRequest, string(svcerrors.CodeInvalidInput), "payeeName is required", nil)
				return
			}
			p.ID = "3"
			httputil.WriteJSON(w, http.StatusCreated, p)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClientGetPayeesBothConventions(t *testing.T) {
	server := fakeAPI(t)
	client := NewClient(httputil.ServiceClientConfig{BaseURL: server.URL}, quietLogger())

	direct, err := client.GetPayees(context.Background())
	require.NoError(t, err)
	require.Len(t, direct, 2)

	select {
	case res := <-client.GetPayeesAsync(context.Background()):
		require.NoError(t, res.Err)
		assert.Equal(t, direct, res.Payees)
	case <-time.After(2 * time.Second):
		t.Fatal("async retrieval did not complete")
	}
}

func TestClientSearchPayees(t *testing.T) {
	server := fakeAPI(t)
	client := NewClient(httputil.ServiceClientConfig{BaseURL: server.URL}, quietLogger())

	found, err := client.SearchPayees(context.Background(), payee.Criteria{State: "TX"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Bolt", found[0].PayeeName)
}

func TestClientAddPayee(t *testing.T) {
	server := fakeAPI(t)
	client := NewClient(httputil.ServiceClientConfig{BaseURL: server.URL}, quietLogger())

	created, err := client.AddPayee(context.Background(), payee.Payee{PayeeName: "City Gas"})
	require.NoError(t, err)
	assert.Equal(t, "3", created.ID)

	_, err = client.AddPayee(context.Background(), payee.Payee{})
	svcErr := svcerrors.GetServiceError(err)
	require.NotNil(t, svcErr)
	assert.Equal(t, svcerrors.CodeInvalidInput, svcErr.Code)
	assert.Equal(t, http.StatusBadRequest, svcErr.HTTPStatus)
	assert.Equal(t, "payeeName is required", svcErr.Message)
}

func TestClientUnreachableIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(httputil.ServiceClientConfig{BaseURL: url, MaxRetries: 0}, quietLogger())
	_, err := client.GetPayees(context.Background())
	svcErr := svcerrors.GetServiceError(err)
	require.NotNil(t, svcErr)
	assert.Equal(t, svcerrors.CodeUpstream, svcErr.Code)
}

func TestClientServerErrorIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(httputil.ServiceClientConfig{BaseURL: server.URL}, quietLogger())
	_, err := client.GetPayees(context.Background())
	assert.Equal(t, svcerrors.CodeUpstream, svcerrors.GetServiceError(err).Code)
}

func TestLocalDataAccess(t *testing.T) {
	svc := payees.New(memory.New(), quietLogger())
	local := NewLocal(svc)
	ctx := context.Background()

	_, err := local.AddPayee(ctx, payee.Payee{PayeeName: "Acme", Address: payee.Address{City: "Denver", State: "CO"}})
	require.NoError(t, err)

	res := <-local.GetPayeesAsync(ctx)
	require.NoError(t, res.Err)
	assert.Len(t, res.Payees, 1)

	found, err := local.SearchPayees(ctx, payee.Criteria{Query: "acm"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}
