package acumatica

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginSendsCredentials(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/entity/auth/login", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "admin", "secret", "Company A", 200)
	require.NoError(t, err)
	require.NoError(t, c.Login(context.Background()))

	assert.Equal(t, "admin", got["name"])
	assert.Equal(t, "secret", got["password"])
	assert.Equal(t, "Company A", got["company"])
}

func TestLoginRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "admin", "wrong", "", 200)
	require.NoError(t, err)
	assert.Error(t, c.Login(context.Background()))
}

func TestFetchCustomersPagePassesSkipAndTop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, endpointPath+"/Customer", r.URL.Path)
		assert.Equal(t, "40", r.URL.Query().Get("$skip"))
		assert.Equal(t, "20", r.URL.Query().Get("$top"))
		fmt.Fprint(w, `[
			{"CustomerID": {"value": "C001"}, "CustomerName": {"value": "Acme Corp"}},
			{"CustomerID": {"value": "C002"}, "CustomerName": {"value": "Globex"}}
		]`)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "admin", "secret", "", 20)
	require.NoError(t, err)

	page, err := c.FetchCustomersPage(context.Background(), 40)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "C001", page[0].CustomerID.Value)
	assert.Equal(t, "Globex", page[1].CustomerName.Value)
}

func TestGetPageRetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `[{"ReferenceNbr": {"value": "INV-001"}, "Balance": {"value": 120.50}}]`)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "admin", "secret", "", 20)
	require.NoError(t, err)

	page, err := c.FetchInvoicesPage(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "INV-001", page[0].ReferenceNbr.Value)
	assert.Equal(t, "120.50", page[0].Balance.Value.String())
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestGetPageDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "admin", "secret", "", 20)
	require.NoError(t, err)

	_, err = c.FetchPaymentsPage(context.Background(), 0)
	assert.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}
