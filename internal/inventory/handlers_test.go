package inventory

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *Store) {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "inventory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer(NewHandler(store).Routes())
	t.Cleanup(srv.Close)
	return srv, store
}

func postForm(t *testing.T, srv *httptest.Server, path string, form url.Values) *http.Response {
	t.Helper()
	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.PostForm(srv.URL+path, form)
	require.NoError(t, err)
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestIndex(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("lists seeded products with totals", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/")
		require.NoError(t, err)
		page := body(t, resp)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, page, "Apple iPhone 14")
		assert.Contains(t, page, "Logitech MX Master 3 Mouse")
	})

	t.Run("search narrows the table", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/?search=sony")
		require.NoError(t, err)
		page := body(t, resp)

		assert.Contains(t, page, "Sony WH-1000XM5 Headphones")
		assert.NotContains(t, page, "Apple iPhone 14")
	})
}

func TestAddProduct(t *testing.T) {
	srv, store := newTestServer(t)

	t.Run("valid form redirects home", func(t *testing.T) {
		resp := postForm(t, srv, "/add", url.Values{
			"name":     {"Anker Charger"},
			"quantity": {"12"},
			"price":    {"29.99"},
		})
		resp.Body.Close()

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))

		products, err := store.ListProducts(t.Context(), "anker")
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, 12, products[0].Quantity)
	})

	t.Run("blank quantity defaults to zero", func(t *testing.T) {
		resp := postForm(t, srv, "/add", url.Values{
			"name":  {"Webcam Cover"},
			"price": {"4.99"},
		})
		resp.Body.Close()
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)

		products, err := store.ListProducts(t.Context(), "webcam")
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Zero(t, products[0].Quantity)
	})

	t.Run("negative price re-renders form", func(t *testing.T) {
		resp := postForm(t, srv, "/add", url.Values{
			"name":  {"Bad Deal"},
			"price": {"-1"},
		})
		page := body(t, resp)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, page, "Price must be a non-negative number.")
	})

	t.Run("missing name re-renders form", func(t *testing.T) {
		resp := postForm(t, srv, "/add", url.Values{"price": {"9.99"}})
		page := body(t, resp)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, page, "Name is required.")
	})
}

func TestEditProduct(t *testing.T) {
	srv, store := newTestServer(t)
	products, err := store.ListProducts(t.Context(), "iphone")
	require.NoError(t, err)
	require.Len(t, products, 1)
	id := strconv.FormatUint(uint64(products[0].ID), 10)

	resp := postForm(t, srv, "/edit/"+id, url.Values{
		"name":     {"Apple iPhone 14 Pro"},
		"quantity": {"7"},
		"price":    {"1099.99"},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	got, err := store.GetProduct(t.Context(), products[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Apple iPhone 14 Pro", got.Name)
	assert.Equal(t, 7, got.Quantity)
}

func TestEditMissingProduct(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/edit/999")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	post := postForm(t, srv, "/edit/999", url.Values{
		"name":  {"Ghost"},
		"price": {"1"},
	})
	post.Body.Close()
	assert.Equal(t, http.StatusNotFound, post.StatusCode)
}

func TestDeleteProduct(t *testing.T) {
	srv, store := newTestServer(t)
	products, err := store.ListProducts(t.Context(), "mouse")
	require.NoError(t, err)
	require.Len(t, products, 1)

	resp := postForm(t, srv, "/delete/"+strconv.FormatUint(uint64(products[0].ID), 10), nil)
	resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	// Flash cookie carries the confirmation for the next page load.
	assert.NotEmpty(t, resp.Cookies())

	_, err = store.GetProduct(t.Context(), products[0].ID)
	assert.Error(t, err)

	again := postForm(t, srv, "/delete/"+strconv.FormatUint(uint64(products[0].ID), 10), nil)
	again.Body.Close()
	assert.Equal(t, http.StatusNotFound, again.StatusCode)
}
