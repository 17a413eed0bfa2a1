package products

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchTerms(t *testing.T) {
	assert.Equal(t, "party jeans blazer shirts pants female clothing", SearchTerms("female", "Party"))
	assert.Equal(t, "male clothing", SearchTerms("male", "Gothic"))
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, DefaultHost, r.Header.Get("x-rapidapi-host"))
		q := r.URL.Query()
		assert.Equal(t, "trending shirts t-shirts pants hoodies sweatshirts male clothing", q.Get("query"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "IN", q.Get("country"))
		assert.Equal(t, "BEST_SELLERS", q.Get("sort_by"))
		_, _ = w.Write([]byte(`{"status":"OK","data":{"products":[{"asin":"A1"},{"asin":"A2"}]}}`))
	}))
	defer srv.Close()

	res, err := NewClient("key", "", srv.URL).Search(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, TotalPages, res.TotalPages)
	require.Len(t, res.Products, 2)
	assert.JSONEq(t, `{"asin":"A1"}`, string(res.Products[0]))
}

func TestSearch_NoProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","data":{}}`))
	}))
	defer srv.Close()

	res, err := NewClient("key", "", srv.URL).Search(context.Background(), Query{Gender: "female", Category: "Formal", Page: 3})
	require.NoError(t, err)
	assert.NotNil(t, res.Products)
	assert.Empty(t, res.Products)
}

func TestSearch_Errors(t *testing.T) {
	_, err := NewClient("", "", "").Search(context.Background(), Query{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewClient("key", "", "http://unused").Search(context.Background(), Query{Page: -1})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"You are not subscribed to this API."}`))
	}))
	defer srv.Close()

	_, err = NewClient("key", "", srv.URL).Search(context.Background(), Query{})
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusForbidden, ue.StatusCode)
	assert.Equal(t, "You are not subscribed to this API.", ue.Message)
}
