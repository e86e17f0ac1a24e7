package school

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"webcourse/internal/common"
	"webcourse/internal/webutil"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Handler serves the school HTML pages.
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

// Routes registers all school routes on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("GET /teachers", h.teachers)
	mux.HandleFunc("GET /courses", h.courses)

	mux.HandleFunc("GET /add", h.studentForm)
	mux.HandleFunc("POST /add", h.addStudent)
	mux.HandleFunc("GET /edit/{id}", h.editStudentForm)
	mux.HandleFunc("POST /edit/{id}", h.editStudent)
	mux.HandleFunc("POST /delete/{id}", h.deleteStudent)

	mux.HandleFunc("GET /add-teacher", h.teacherForm)
	mux.HandleFunc("POST /add-teacher", h.addTeacher)
	mux.HandleFunc("GET /edit-teacher/{id}", h.editTeacherForm)
	mux.HandleFunc("POST /edit-teacher/{id}", h.editTeacher)
	mux.HandleFunc("POST /delete-teacher/{id}", h.deleteTeacher)

	mux.HandleFunc("GET /add-course", h.courseForm)
	mux.HandleFunc("POST /add-course", h.addCourse)
	mux.HandleFunc("GET /edit-course/{id}", h.editCourseForm)
	mux.HandleFunc("POST /edit-course/{id}", h.editCourse)
	mux.HandleFunc("POST /delete-course/{id}", h.deleteCourse)
	return mux
}

type listPage struct {
	Flash    *webutil.Flash
	Students []Student
	Teachers []Teacher
	Courses  []Course
}

type formPage struct {
	Title    string
	Action   string
	Error    string
	Student  Student
	Teacher  Teacher
	Course   Course
	Courses  []Course
	Teachers []Teacher
}

// --- list pages ---

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	students, err := h.store.ListStudents(r.Context())
	if err != nil {
		h.fail(w, "failed to list students", err)
		return
	}
	h.render(w, http.StatusOK, "index.html", listPage{
		Flash:    webutil.PopFlash(w, r),
		Students: students,
	})
}

func (h *Handler) teachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.store.ListTeachers(r.Context())
	if err != nil {
		h.fail(w, "failed to list teachers", err)
		return
	}
	h.render(w, http.StatusOK, "teachers.html", listPage{
		Flash:    webutil.PopFlash(w, r),
		Teachers: teachers,
	})
}

func (h *Handler) courses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.store.ListCourses(r.Context())
	if err != nil {
		h.fail(w, "failed to list courses", err)
		return
	}
	h.render(w, http.StatusOK, "courses.html", listPage{
		Flash:   webutil.PopFlash(w, r),
		Courses: courses,
	})
}

// --- students ---

func (h *Handler) studentForm(w http.ResponseWriter, r *http.Request) {
	courses, err := h.store.ListCourses(r.Context())
	if err != nil {
		h.fail(w, "failed to list courses", err)
		return
	}
	h.render(w, http.StatusOK, "student_form.html", formPage{
		Title:   "Add Student",
		Action:  "/add",
		Courses: courses,
	})
}

func (h *Handler) addStudent(w http.ResponseWriter, r *http.Request) {
	st := Student{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		CourseID: formUint(r, "course_id"),
	}
	if msg := h.validatePerson(r, st.Name, st.Email, st.CourseID); msg != "" {
		h.renderPersonForm(w, r, "student_form.html", formPage{
			Title: "Add Student", Action: "/add", Error: msg, Student: st,
		})
		return
	}

	err := h.store.CreateStudent(r.Context(), &st)
	switch {
	case errors.Is(err, common.ErrDuplicate):
		h.renderPersonForm(w, r, "student_form.html", formPage{
			Title: "Add Student", Action: "/add",
			Error: "A student with this email already exists.", Student: st,
		})
	case errors.Is(err, common.ErrForeignKey):
		h.renderPersonForm(w, r, "student_form.html", formPage{
			Title: "Add Student", Action: "/add",
			Error: "Selected course does not exist.", Student: st,
		})
	case err != nil:
		h.fail(w, "failed to create student", err)
	default:
		slog.Info("student created", "student_id", st.ID)
		webutil.SetFlash(w, "success", "Student added!")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (h *Handler) editStudentForm(w http.ResponseWriter, r *http.Request) {
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
		h.fail(w, "failed to get student", err)
		return
	}
	courses, err := h.store.ListCourses(r.Context())
	if err != nil {
		h.fail(w, "failed to list courses", err)
		return
	}
	h.render(w, http.StatusOK, "student_form.html", formPage{
		Title:   "Edit Student",
		Action:  "/edit/" + strconv.FormatUint(uint64(id), 10),
		Student: *st,
		Courses: courses,
	})
}

func (h *Handler) editStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	st := Student{
		ID:       id,
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		CourseID: formUint(r, "course_id"),
	}
	action := "/edit/" + strconv.FormatUint(uint64(id), 10)
	if msg := h.validatePerson(r, st.Name, st.Email, st.CourseID); msg != "" {
		h.renderPersonForm(w, r, "student_form.html", formPage{
			Title: "Edit Student", Action: action, Error: msg, Student: st,
		})
		return
	}

	err := h.store.UpdateStudent(r.Context(), &st)
	switch {
	case errors.Is(err, common.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, common.ErrDuplicate):
		h.renderPersonForm(w, r, "student_form.html", formPage{
			Title: "Edit Student", Action: action,
			Error: "A student with this email already exists.", Student: st,
		})
	case errors.Is(err, common.ErrForeignKey):
		h.renderPersonForm(w, r, "student_form.html", formPage{
			Title: "Edit Student", Action: action,
			Error: "Selected course does not exist.", Student: st,
		})
	case err != nil:
		h.fail(w, "failed to update student", err)
	default:
		webutil.SetFlash(w, "success", "Student updated!")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (h *Handler) deleteStudent(w http.ResponseWriter, r *http.Request) {
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
		h.fail(w, "failed to delete student", err)
		return
	}
	webutil.SetFlash(w, "danger", "Student deleted!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// --- teachers ---

func (h *Handler) teacherForm(w http.ResponseWriter, r *http.Request) {
	courses, err := h.store.ListCourses(r.Context())
	if err != nil {
		h.fail(w, "failed to list courses", err)
		return
	}
	h.render(w, http.StatusOK, "teacher_form.html", formPage{
		Title:   "Add Teacher",
		Action:  "/add-teacher",
		Courses: courses,
	})
}

func (h *Handler) addTeacher(w http.ResponseWriter, r *http.Request) {
	t := Teacher{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		CourseID: formUint(r, "course_id"),
	}
	if msg := h.validatePerson(r, t.Name, t.Email, t.CourseID); msg != "" {
		h.renderPersonForm(w, r, "teacher_form.html", formPage{
			Title: "Add Teacher", Action: "/add-teacher", Error: msg, Teacher: t,
		})
		return
	}

	err := h.store.CreateTeacher(r.Context(), &t)
	switch {
	case errors.Is(err, common.ErrDuplicate):
		h.renderPersonForm(w, r, "teacher_form.html", formPage{
			Title: "Add Teacher", Action: "/add-teacher",
			Error: "A teacher with this email already exists.", Teacher: t,
		})
	case errors.Is(err, common.ErrForeignKey):
		h.renderPersonForm(w, r, "teacher_form.html", formPage{
			Title: "Add Teacher", Action: "/add-teacher",
			Error: "Selected course does not exist.", Teacher: t,
		})
	case err != nil:
		h.fail(w, "failed to create teacher", err)
	default:
		slog.Info("teacher created", "teacher_id", t.ID)
		webutil.SetFlash(w, "success", "Teacher added successfully!")
		http.Redirect(w, r, "/teachers", http.StatusSeeOther)
	}
}

func (h *Handler) editTeacherForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := h.store.GetTeacher(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, "failed to get teacher", err)
		return
	}
	courses, err := h.store.ListCourses(r.Context())
	if err != nil {
		h.fail(w, "failed to list courses", err)
		return
	}
	h.render(w, http.StatusOK, "teacher_form.html", formPage{
		Title:   "Edit Teacher",
		Action:  "/edit-teacher/" + strconv.FormatUint(uint64(id), 10),
		Teacher: *t,
		Courses: courses,
	})
}

func (h *Handler) editTeacher(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t := Teacher{
		ID:       id,
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		CourseID: formUint(r, "course_id"),
	}
	action := "/edit-teacher/" + strconv.FormatUint(uint64(id), 10)
	if msg := h.validatePerson(r, t.Name, t.Email, t.CourseID); msg != "" {
		h.renderPersonForm(w, r, "teacher_form.html", formPage{
			Title: "Edit Teacher", Action: action, Error: msg, Teacher: t,
		})
		return
	}

	err := h.store.UpdateTeacher(r.Context(), &t)
	switch {
	case errors.Is(err, common.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, common.ErrDuplicate):
		h.renderPersonForm(w, r, "teacher_form.html", formPage{
			Title: "Edit Teacher", Action: action,
			Error: "A teacher with this email already exists.", Teacher: t,
		})
	case errors.Is(err, common.ErrForeignKey):
		h.renderPersonForm(w, r, "teacher_form.html", formPage{
			Title: "Edit Teacher", Action: action,
			Error: "Selected course does not exist.", Teacher: t,
		})
	case err != nil:
		h.fail(w, "failed to update teacher", err)
	default:
		webutil.SetFlash(w, "success", "Teacher updated!")
		http.Redirect(w, r, "/teachers", http.StatusSeeOther)
	}
}

func (h *Handler) deleteTeacher(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := h.store.DeleteTeacher(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, "failed to delete teacher", err)
		return
	}
	webutil.SetFlash(w, "danger", "Teacher deleted!")
	http.Redirect(w, r, "/teachers", http.StatusSeeOther)
}

// --- courses ---

func (h *Handler) courseForm(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.store.ListTeachers(r.Context())
	if err != nil {
		h.fail(w, "failed to list teachers", err)
		return
	}
	h.render(w, http.StatusOK, "course_form.html", formPage{
		Title:    "Add Course",
		Action:   "/add-course",
		Teachers: teachers,
	})
}

func (h *Handler) addCourse(w http.ResponseWriter, r *http.Request) {
	c := Course{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}
	teacherID := formUint(r, "teacher_id")
	if c.Name == "" {
		teachers, err := h.store.ListTeachers(r.Context())
		if err != nil {
			h.fail(w, "failed to list teachers", err)
			return
		}
		h.render(w, http.StatusBadRequest, "course_form.html", formPage{
			Title: "Add Course", Action: "/add-course",
			Error: "Course name is required.", Course: c, Teachers: teachers,
		})
		return
	}

	if err := h.store.CreateCourse(r.Context(), &c, teacherID); err != nil {
		h.fail(w, "failed to create course", err)
		return
	}
	slog.Info("course created", "course_id", c.ID)
	webutil.SetFlash(w, "success", "Course added with teacher assignment!")
	http.Redirect(w, r, "/courses", http.StatusSeeOther)
}

func (h *Handler) editCourseForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.store.GetCourse(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, "failed to get course", err)
		return
	}
	h.render(w, http.StatusOK, "course_form.html", formPage{
		Title:  "Edit Course",
		Action: "/edit-course/" + strconv.FormatUint(uint64(id), 10),
		Course: *c,
	})
}

func (h *Handler) editCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c := Course{
		ID:          id,
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}
	if c.Name == "" {
		h.render(w, http.StatusBadRequest, "course_form.html", formPage{
			Title:  "Edit Course",
			Action: "/edit-course/" + strconv.FormatUint(uint64(id), 10),
			Error:  "Course name is required.", Course: c,
		})
		return
	}

	err := h.store.UpdateCourse(r.Context(), &c)
	if errors.Is(err, common.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, "failed to update course", err)
		return
	}
	webutil.SetFlash(w, "success", "Course updated!")
	http.Redirect(w, r, "/courses", http.StatusSeeOther)
}

func (h *Handler) deleteCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := h.store.DeleteCourse(r.Context(), id)
	switch {
	case errors.Is(err, common.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, ErrCourseInUse):
		webutil.SetFlash(w, "danger", "Cannot delete a course that still has teachers or students.")
		http.Redirect(w, r, "/courses", http.StatusSeeOther)
	case err != nil:
		h.fail(w, "failed to delete course", err)
	default:
		webutil.SetFlash(w, "danger", "Course deleted!")
		http.Redirect(w, r, "/courses", http.StatusSeeOther)
	}
}

// --- helpers ---

func (h *Handler) validatePerson(r *http.Request, name, email string, courseID uint) string {
	if name == "" || email == "" {
		return "Name and email are required."
	}
	if courseID == 0 {
		return "Please select a course."
	}
	return ""
}

// renderPersonForm re-renders a student/teacher form with the course list
// reloaded, used on validation failures.
func (h *Handler) renderPersonForm(w http.ResponseWriter, r *http.Request, name string, page formPage) {
	courses, err := h.store.ListCourses(r.Context())
	if err != nil {
		h.fail(w, "failed to list courses", err)
		return
	}
	page.Courses = courses
	h.render(w, http.StatusBadRequest, name, page)
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return uint(id), true
}

func formUint(r *http.Request, key string) uint {
	n, err := strconv.ParseUint(r.FormValue(key), 10, 32)
	if err != nil {
		return 0
	}
	return uint(n)
}
