package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// testClient is an HTTP client with its own cookie jar, so each client
// carries its own session and therefore acts as a distinct seat holder.
type testClient struct {
	t      testing.TB
	client *http.Client
	base   string
}

func newTestClient(t testing.TB, server *httptest.Server) *testClient {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testClient{
		t:      t,
		client: &http.Client{Jar: jar, Timeout: 10 * time.Second},
		base:   server.URL,
	}
}

func (c *testClient) do(method, path string, body any) *http.Response {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.client.Do(req)
	require.NoError(c.t, err)

	return res
}

func decodeResponse[T any](t testing.TB, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()

	var decoded T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&decoded))

	return decoded
}

// resetState wipes sales, holds and seat state between tests and reseeds the
// event catalog with known rows.
func resetState(t testing.TB, app *TestApp) {
	t.Helper()
	ctx := context.Background()

	_, err := app.DB.Exec(ctx, "TRUNCATE sale_seats, sales RESTART IDENTITY")
	require.NoError(t, err)

	_, err = app.DB.Exec(ctx, "TRUNCATE events RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	require.NoError(t, app.RedisClient.FlushAll(ctx).Err())

	app.Publisher.Published = nil
}

func seedEvent(t testing.TB, app *TestApp, name string, rows, cols int, basePrice decimal.Decimal, active bool) int64 {
	t.Helper()

	var id int64
	err := app.DB.QueryRow(
		context.Background(),
		`INSERT INTO events (external_id, name, event_date, seat_rows, seat_cols, base_price, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		1000, name, time.Now().AddDate(0, 1, 0), rows, cols, basePrice.String(), active,
	).Scan(&id)
	require.NoError(t, err)

	return id
}
