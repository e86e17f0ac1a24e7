package school

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
	store, err := NewStore(filepath.Join(t.TempDir(), "academy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer(NewHandler(store).Routes())
	t.Cleanup(srv.Close)
	return srv, store
}

// client that does not follow redirects, so the 303s are observable.
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, srv *httptest.Server, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := noRedirectClient().PostForm(srv.URL+path, form)
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

func TestIndexListsSeededStudents(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	page := body(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, page, "Rahul Kumar")
	assert.Contains(t, page, "Priya Singh")
}

func TestAddStudent(t *testing.T) {
	srv, store := newTestServer(t)
	courses, err := store.ListCourses(t.Context())
	require.NoError(t, err)
	courseID := strconv.FormatUint(uint64(courses[0].ID), 10)

	t.Run("valid form redirects home with flash", func(t *testing.T) {
		resp := postForm(t, srv, "/add", url.Values{
			"name":      {"Amit Verma"},
			"email":     {"amit@student.com"},
			"course_id": {courseID},
		})
		defer resp.Body.Close()

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
		assert.NotEmpty(t, resp.Cookies())
	})

	t.Run("missing email re-renders form", func(t *testing.T) {
		resp := postForm(t, srv, "/add", url.Values{
			"name":      {"No Email"},
			"course_id": {courseID},
		})
		page := body(t, resp)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, page, "Name and email are required.")
	})

	t.Run("duplicate email re-renders form", func(t *testing.T) {
		resp := postForm(t, srv, "/add", url.Values{
			"name":      {"Rahul Again"},
			"email":     {"rahul@student.com"},
			"course_id": {courseID},
		})
		page := body(t, resp)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, page, "A student with this email already exists.")
	})
}

func TestTeacherPages(t *testing.T) {
	srv, store := newTestServer(t)

	resp, err := http.Get(srv.URL + "/teachers")
	require.NoError(t, err)
	page := body(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, page, "Dr. Sarah Wilson")

	teachers, err := store.ListTeachers(t.Context())
	require.NoError(t, err)

	del := postForm(t, srv, "/delete-teacher/"+strconv.FormatUint(uint64(teachers[0].ID), 10), nil)
	del.Body.Close()
	assert.Equal(t, http.StatusSeeOther, del.StatusCode)
	assert.Equal(t, "/teachers", del.Header.Get("Location"))
}

func TestCoursePages(t *testing.T) {
	srv, store := newTestServer(t)

	t.Run("add course assigns teacher", func(t *testing.T) {
		teachers, err := store.ListTeachers(t.Context())
		require.NoError(t, err)
		teacher := teachers[0]

		resp := postForm(t, srv, "/add-course", url.Values{
			"name":        {"Biology"},
			"description": {"Cells & Genetics"},
			"teacher_id":  {strconv.FormatUint(uint64(teacher.ID), 10)},
		})
		resp.Body.Close()
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/courses", resp.Header.Get("Location"))

		got, err := store.GetTeacher(t.Context(), teacher.ID)
		require.NoError(t, err)
		assert.Equal(t, "Biology", got.Course.Name)
	})

	t.Run("delete of in-use course redirects with warning flash", func(t *testing.T) {
		courses, err := store.ListCourses(t.Context())
		require.NoError(t, err)

		resp := postForm(t, srv, "/delete-course/"+strconv.FormatUint(uint64(courses[0].ID), 10), nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/courses", resp.Header.Get("Location"))

		// The course is still there.
		_, err = store.GetCourse(t.Context(), courses[0].ID)
		assert.NoError(t, err)
	})
}

func TestPathIDRejectsGarbage(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/edit/abc")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postForm(t, srv, "/delete/999", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = strictGet(t, srv, "/edit-teacher/999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func strictGet(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}
