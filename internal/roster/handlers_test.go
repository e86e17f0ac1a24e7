package roster

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Handler, *http.ServeMux) {
	t.Helper()
	h := NewHandler(newTestStore(t))
	return h, h.Routes()
}

func postForm(mux *http.ServeMux, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestIndexListsStudents(t *testing.T) {
	_, mux := newTestServer(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jane Doe")
}

func TestAddStudent(t *testing.T) {
	t.Run("valid form redirects home", func(t *testing.T) {
		_, mux := newTestServer(t)
		rec := postForm(mux, "/add", url.Values{
			"name":   {"Ada Lovelace"},
			"email":  {"ada@example.com"},
			"course": {"Algorithms"},
		})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("missing field re-renders with error", func(t *testing.T) {
		_, mux := newTestServer(t)
		rec := postForm(mux, "/add", url.Values{
			"name": {"Ada Lovelace"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "required")
	})
}

func TestEditMissingStudentIs404(t *testing.T) {
	_, mux := newTestServer(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/edit/9999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = postForm(mux, "/delete/9999", url.Values{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
