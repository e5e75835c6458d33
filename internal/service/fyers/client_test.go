package fyers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CandleVault/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func historyWindow() (time.Time, time.Time) {
	from := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	return from, from
}

func TestHistoryParsesCandles(t *testing.T) {
	var gotAuth, gotVersion string
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("version")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"s":    "ok",
			"code": 200,
			"candles": [][]float64{
				{1717401600, 10, 11, 9, 10.5, 100},
				{1717401660, 10.5, 12, 10, 11, 150},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "", WithCredentials("APPID-100", "tok"))
	from, to := historyWindow()
	candles, err := c.History(context.Background(), "NSE:RELIANCE-EQ", "1", from, to)
	require.NoError(t, err)

	require.Len(t, candles, 2)
	assert.Equal(t, int64(1717401600), candles[0].Timestamp)
	assert.Equal(t, 10.5, candles[0].Close)
	assert.Equal(t, int64(150), candles[1].Volume)

	assert.Equal(t, "APPID-100:tok", gotAuth)
	assert.Equal(t, "3", gotVersion)
	assert.Equal(t, "NSE:RELIANCE-EQ", gotQuery["symbol"])
	assert.Equal(t, "1", gotQuery["resolution"])
	assert.Equal(t, "1", gotQuery["date_format"])
	assert.Equal(t, "2024-06-03", gotQuery["range_from"])
	assert.Equal(t, "2024-06-03", gotQuery["range_to"])
	assert.Equal(t, "1", gotQuery["cont_flag"])
}

func TestHistoryNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"s": "no_data", "code": 200})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	from, to := historyWindow()
	candles, err := c.History(context.Background(), "NSE:RELIANCE-EQ", "1", from, to)
	require.NoError(t, err)
	assert.Nil(t, candles)
}

func TestHistoryUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	from, to := historyWindow()
	_, err := c.History(context.Background(), "NSE:RELIANCE-EQ", "1", from, to)

	var authErr *models.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
}

func TestHistoryServerErrorTransient(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))

		c := New(srv.URL, "")
		from, to := historyWindow()
		_, err := c.History(context.Background(), "NSE:RELIANCE-EQ", "1", from, to)
		assert.True(t, models.IsTransient(err), "status %d should be transient", status)
		srv.Close()
	}
}

func TestHistoryAuthKeywordInBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"s":       "error",
			"code":    -16,
			"message": "Could not authenticate the user: token expired",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	from, to := historyWindow()
	_, err := c.History(context.Background(), "NSE:RELIANCE-EQ", "1", from, to)

	var authErr *models.AuthError
	assert.ErrorAs(t, err, &authErr)
}

func TestHistoryPlainAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"s":       "error",
			"code":    -9,
			"message": "symbol not found",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	from, to := historyWindow()
	_, err := c.History(context.Background(), "NSE:NOPE-EQ", "1", from, to)

	require.Error(t, err)
	var authErr *models.AuthError
	assert.False(t, models.IsTransient(err))
	assert.NotErrorAs(t, err, &authErr)
}

func TestSetAccessTokenChangesHeader(t *testing.T) {
	var auths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auths = append(auths, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{"s": "no_data"})
	}))
	defer srv.Close()

	c := New(srv.URL, "", WithCredentials("APPID-100", "old"))
	from, to := historyWindow()
	_, err := c.History(context.Background(), "NSE:RELIANCE-EQ", "1", from, to)
	require.NoError(t, err)

	c.SetAccessToken("new")
	_, err = c.History(context.Background(), "NSE:RELIANCE-EQ", "1", from, to)
	require.NoError(t, err)

	assert.Equal(t, []string{"APPID-100:old", "APPID-100:new"}, auths)
}

func TestExchangeRefreshToken(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{"s": "ok", "access_token": "fresh-token"})
	}))
	defer srv.Close()

	c := New("", srv.URL)
	token, err := c.ExchangeRefreshToken(context.Background(), "abc123hash", "refresh-me")
	require.NoError(t, err)

	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, "refresh_token", gotBody["grant_type"])
	assert.Equal(t, "abc123hash", gotBody["appIdHash"])
	assert.Equal(t, "refresh-me", gotBody["refresh_token"])
}

func TestExchangeRefreshTokenRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"s": "error", "message": "invalid refresh token"})
	}))
	defer srv.Close()

	c := New("", srv.URL)
	_, err := c.ExchangeRefreshToken(context.Background(), "abc123hash", "stale")

	var authErr *models.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Message, "invalid refresh token")
}

func TestHistoryRequestDelay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"s": "no_data"})
	}))
	defer srv.Close()

	c := New(srv.URL, "", WithRequestDelay(50*time.Millisecond))
	from, to := historyWindow()

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.History(context.Background(), "NSE:RELIANCE-EQ", "1", from, to)
		require.NoError(t, err)
	}
	// burst of one: the second and third calls each wait out the interval
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}
