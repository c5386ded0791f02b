package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api/", WithLogger(applog.Discard()), WithTimeout(2*time.Second))
	require.NoError(t, err)
	return c
}

func TestListAllDecodesMixedIDs(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/expenses", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id":1,"date":"2024-03-01","category":"Food","description":"lunch","amount":100},
			{"id":"b2","date":"2024-03-02","category":"Transport","amount":"25.5"},
			{"id":3,"date":"2024-03-03","category":"Other"}
		]`))
	}))

	records, err := c.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, core.RecordID("1"), records[0].ID)
	assert.Equal(t, core.RecordID("b2"), records[1].ID)
	assert.Equal(t, "25.50", records[1].Amount.String())
	assert.True(t, records[2].Amount.IsZero())
}

func TestListAllEmptyBodyIsEmptySlice(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}))
	records, err := c.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestCreateSendsInputWithoutID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "id")
		assert.Equal(t, "Food", body["category"])
		assert.Equal(t, 12.5, body["amount"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"new-id","date":"2024-03-01","category":"Food","description":"","amount":12.5}`))
	}))

	rec, err := c.Create(context.Background(), core.ExpenseInput{
		Date:     "2024-03-01",
		Category: "Food",
		Amount:   core.NewAmount(12.5),
	})
	require.NoError(t, err)
	assert.Equal(t, core.RecordID("new-id"), rec.ID)
}

func TestUpdateUsesPutOnRecordPath(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/expenses/42", r.URL.Path)
		_, _ = w.Write([]byte(`{"date":"2024-03-05","category":"Bills","amount":7}`))
	}))

	rec, err := c.Update(context.Background(), "42", core.ExpenseInput{Date: "2024-03-05", Category: "Bills", Amount: core.NewAmount(7)})
	require.NoError(t, err)
	assert.Equal(t, core.RecordID("42"), rec.ID, "missing id in response falls back to the requested one")
}

func TestNotFoundOnUpdateAndRemove(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := c.Update(context.Background(), "gone", core.ExpenseInput{Date: "2024-03-01", Category: "Food"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, ErrTransport)

	err = c.Remove(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrNotFound)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusNotFound, te.Status)
	assert.Equal(t, applog.OpDelete, te.Op)
}

func TestNotFoundOnListIsPlainTransportFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	_, err := c.ListAll(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestServerErrorIsTransportFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	_, err := c.Create(context.Background(), core.ExpenseInput{Date: "2024-03-01", Category: "Food"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "boom")
}

func TestMalformedJSONIsTransportFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"oops"`))
	}))
	_, err := c.ListAll(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
}

func TestUnreachableStore(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, WithLogger(applog.Discard()))
	require.NoError(t, err)
	_, err = c.ListAll(context.Background())
	assert.ErrorIs(t, err, ErrTransport)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.Status)
}

func TestTimeoutBoundsRequest(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := New(srv.URL, WithLogger(applog.Discard()), WithTimeout(50*time.Millisecond))
	require.NoError(t, err)
	_, err = c.ListAll(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRemoveAcceptsNoContent(t *testing.T) {
	calls := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	require.NoError(t, c.Remove(context.Background(), "7"))
	assert.Equal(t, 1, calls, "no retries")
}

func TestSummary(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/summary", r.URL.Path)
		_, _ = w.Write([]byte(`[{"category":"Food","total":150},{"category":"Transport","total":"25"}]`))
	}))
	totals, err := c.Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "150.00", totals[0].Total.String())
	assert.Equal(t, "25.00", totals[1].Total.String())
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:5000/api")
	assert.Error(t, err)
}
