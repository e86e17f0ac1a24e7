package roster

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"webcourse/internal/common"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Handler serves the roster HTML pages.
type Handler struct {
	store *Store
	tmpl  *template.Template
}

// NewHandler builds a Handler over the given store.
func NewHandler(store *Store) *Handler {
	return &Handler{
		store: store,
		tmpl:  template.Must(template.ParseFS(templatesFS, "templates/*.html")),
	}
}

// Routes registers all roster routes on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("GET /add", h.addForm)
	mux.HandleFunc("POST /add", h.add)
	mux.HandleFunc("GET /edit/{id}", h.editForm)
	mux.HandleFunc("POST /edit/{id}", h.edit)
	mux.HandleFunc("POST /delete/{id}", h.delete)
	return mux
}

type formPage struct {
	Student Student
	Error   string
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	students, err := h.store.ListStudents(r.Context())
	if err != nil {
		slog.Error("failed to list students", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.render(w, http.StatusOK, "index.html", students)
}

func (h *Handler) addForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "add.html", formPage{})
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	st := Student{
		Name:   r.FormValue("name"),
		Email:  r.FormValue("email"),
		Course: r.FormValue("course"),
	}
	if st.Name == "" || st.Email == "" || st.Course == "" {
		h.render(w, http.StatusBadRequest, "add.html", formPage{
			Student: st,
			Error:   "Name, email and course are all required.",
		})
		return
	}

	if err := h.store.CreateStudent(r.Context(), &st); err != nil {
		slog.Error("failed to create student", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	slog.Info("student created", "student_id", st.ID, "name", st.Name)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	st, err := h.store.GetStudent(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to get student", "student_id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.render(w, http.StatusOK, "edit.html", formPage{Student: *st})
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	st := Student{
		ID:     id,
		Name:   r.FormValue("name"),
		Email:  r.FormValue("email"),
		Course: r.FormValue("course"),
	}
	if st.Name == "" || st.Email == "" || st.Course == "" {
		h.render(w, http.StatusBadRequest, "edit.html", formPage{
			Student: st,
			Error:   "Name, email and course are all required.",
		})
		return
	}

	err := h.store.UpdateStudent(r.Context(), &st)
	if errors.Is(err, common.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to update student", "student_id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	slog.Info("student updated", "student_id", id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := h.store.DeleteStudent(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to delete student", "student_id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	slog.Info("student deleted", "student_id", id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// pathID parses the {id} path segment, answering 404 on garbage so that
// /edit/abc behaves like an unknown route.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}
