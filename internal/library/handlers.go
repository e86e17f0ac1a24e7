package library

import (
	_ "embed"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"webcourse/internal/common"
	"webcourse/internal/webutil"
)

//go:embed admin.html
var adminPage []byte

// Handler serves the library JSON API and the admin page.
type Handler struct {
	store *Store
}

// NewHandler builds a Handler over the given store.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Routes registers all library routes on a fresh mux. Literal segments win
// over wildcards, so /api/books/search does not shadow /api/books/{id}.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/authors", h.listAuthors)
	mux.HandleFunc("POST /api/authors", h.createAuthor)
	mux.HandleFunc("GET /api/authors/search", h.searchAuthors)
	mux.HandleFunc("GET /api/authors/{id}", h.getAuthor)
	mux.HandleFunc("PUT /api/authors/{id}", h.updateAuthor)
	mux.HandleFunc("DELETE /api/authors/{id}", h.deleteAuthor)

	mux.HandleFunc("GET /api/books", h.listBooks)
	mux.HandleFunc("POST /api/books", h.createBook)
	mux.HandleFunc("GET /api/books/search", h.searchBooks)
	mux.HandleFunc("GET /api/books/{id}", h.getBook)
	mux.HandleFunc("PUT /api/books/{id}", h.updateBook)
	mux.HandleFunc("DELETE /api/books/{id}", h.deleteBook)

	mux.HandleFunc("GET /{$}", h.adminPage)
	return mux
}

// authorRequest carries a create or update body. Pointer fields distinguish
// absent keys from provided ones on updates.
type authorRequest struct {
	Name *string `json:"name"`
	Bio  *string `json:"bio"`
	City *string `json:"city"`
}

// bookRequest carries a create or update body for books.
type bookRequest struct {
	Title    *string `json:"title"`
	AuthorID *uint   `json:"author_id"`
	Year     *int    `json:"year"`
	ISBN     *string `json:"isbn"`
}

// --- authors ---

func (h *Handler) listAuthors(w http.ResponseWriter, r *http.Request) {
	p := webutil.ParseListParams(r.URL.Query())
	authors, total, err := h.store.ListAuthors(r.Context(), p)
	if err != nil {
		h.fail(w, "failed to list authors", err)
		return
	}
	webutil.JSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"count":         len(authors),
		"total_authors": total,
		"total_pages":   webutil.TotalPages(total, p.PerPage),
		"current_page":  p.Page,
		"sort":          p.Sort,
		"order":         p.Order,
		"authors":       authorsToJSON(authors),
	})
}

func (h *Handler) getAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	author, err := h.store.GetAuthor(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		webutil.Error(w, http.StatusNotFound, "Author not found")
		return
	}
	if err != nil {
		h.fail(w, "failed to get author", err)
		return
	}
	webutil.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"author":  author.toJSON(),
	})
}

func (h *Handler) createAuthor(w http.ResponseWriter, r *http.Request) {
	var req authorRequest
	if err := webutil.DecodeJSON(r, &req); err != nil {
		webutil.Error(w, http.StatusBadRequest, "No data provided")
		return
	}
	if req.Name == nil || *req.Name == "" {
		webutil.Error(w, http.StatusBadRequest, "Name is required")
		return
	}

	author := &Author{Name: *req.Name, Bio: req.Bio, City: req.City}
	err := h.store.CreateAuthor(r.Context(), author)
	if errors.Is(err, common.ErrDuplicate) {
		webutil.Error(w, http.StatusBadRequest, "Author already exists")
		return
	}
	if err != nil {
		h.fail(w, "failed to create author", err)
		return
	}

	slog.Info("author created", "author_id", author.ID, "name", author.Name)
	webutil.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Author created successfully",
		"author":  author.toJSON(),
	})
}

func (h *Handler) updateAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	author, err := h.store.GetAuthor(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		webutil.Error(w, http.StatusNotFound, "Author not found")
		return
	}
	if err != nil {
		h.fail(w, "failed to get author", err)
		return
	}

	var req authorRequest
	if err := webutil.DecodeJSON(r, &req); err != nil {
		webutil.Error(w, http.StatusBadRequest, "No data provided")
		return
	}
	if req.Name != nil {
		author.Name = *req.Name
	}
	if req.Bio != nil {
		author.Bio = req.Bio
	}
	if req.City != nil {
		author.City = req.City
	}

	err = h.store.UpdateAuthor(r.Context(), author)
	if errors.Is(err, common.ErrDuplicate) {
		webutil.Error(w, http.StatusBadRequest, "Author already exists")
		return
	}
	if err != nil {
		h.fail(w, "failed to update author", err)
		return
	}

	webutil.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Author updated successfully",
		"author":  author.toJSON(),
	})
}

func (h *Handler) deleteAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := h.store.DeleteAuthor(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		webutil.Error(w, http.StatusNotFound, "Author not found")
		return
	}
	if err != nil {
		h.fail(w, "failed to delete author", err)
		return
	}
	slog.Info("author deleted", "author_id", id)
	webutil.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Author deleted successfully",
	})
}

func (h *Handler) searchAuthors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	authors, err := h.store.SearchAuthors(r.Context(), q.Get("q"), q.Get("city"))
	if err != nil {
		h.fail(w, "failed to search authors", err)
		return
	}
	webutil.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(authors),
		"authors": authorsToJSON(authors),
	})
}

// --- books ---

func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	p := webutil.ParseListParams(r.URL.Query())
	books, total, err := h.store.ListBooks(r.Context(), p)
	if err != nil {
		h.fail(w, "failed to list books", err)
		return
	}
	webutil.JSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"count":        len(books),
		"total_books":  total,
		"total_pages":  webutil.TotalPages(total, p.PerPage),
		"current_page": p.Page,
		"sort":         p.Sort,
		"order":        p.Order,
		"books":        booksToJSON(books),
	})
}

func (h *Handler) getBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	book, err := h.store.GetBook(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		webutil.Error(w, http.StatusNotFound, "Book not found")
		return
	}
	if err != nil {
		h.fail(w, "failed to get book", err)
		return
	}
	webutil.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"book":    book.toJSON(),
	})
}

func (h *Handler) createBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := webutil.DecodeJSON(r, &req); err != nil {
		webutil.Error(w, http.StatusBadRequest, "No data provided")
		return
	}
	if req.Title == nil || *req.Title == "" || req.AuthorID == nil {
		webutil.Error(w, http.StatusBadRequest, "Title and author_id are required")
		return
	}

	book := &Book{Title: *req.Title, AuthorID: *req.AuthorID, Year: req.Year, ISBN: req.ISBN}
	err := h.store.CreateBook(r.Context(), book)
	switch {
	case errors.Is(err, common.ErrForeignKey):
		webutil.Error(w, http.StatusBadRequest, "Author not found")
		return
	case errors.Is(err, common.ErrDuplicate):
		webutil.Error(w, http.StatusBadRequest, "ISBN already exists")
		return
	case err != nil:
		h.fail(w, "failed to create book", err)
		return
	}

	// Reload to resolve the author name for the response.
	created, err := h.store.GetBook(r.Context(), book.ID)
	if err != nil {
		h.fail(w, "failed to reload created book", err)
		return
	}
	slog.Info("book created", "book_id", created.ID, "title", created.Title)
	webutil.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Book created successfully",
		"book":    created.toJSON(),
	})
}

func (h *Handler) updateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	book, err := h.store.GetBook(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		webutil.Error(w, http.StatusNotFound, "Book not found")
		return
	}
	if err != nil {
		h.fail(w, "failed to get book", err)
		return
	}

	var req bookRequest
	if err := webutil.DecodeJSON(r, &req); err != nil {
		webutil.Error(w, http.StatusBadRequest, "No data provided")
		return
	}
	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.AuthorID != nil {
		book.AuthorID = *req.AuthorID
	}
	if req.Year != nil {
		book.Year = req.Year
	}
	if req.ISBN != nil {
		book.ISBN = req.ISBN
	}

	err = h.store.UpdateBook(r.Context(), book)
	switch {
	case errors.Is(err, common.ErrForeignKey):
		webutil.Error(w, http.StatusBadRequest, "Author not found")
		return
	case errors.Is(err, common.ErrDuplicate):
		webutil.Error(w, http.StatusBadRequest, "ISBN already exists")
		return
	case err != nil:
		h.fail(w, "failed to update book", err)
		return
	}

	updated, err := h.store.GetBook(r.Context(), id)
	if err != nil {
		h.fail(w, "failed to reload updated book", err)
		return
	}
	webutil.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Book updated successfully",
		"book":    updated.toJSON(),
	})
}

func (h *Handler) deleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := h.store.DeleteBook(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		webutil.Error(w, http.StatusNotFound, "Book not found")
		return
	}
	if err != nil {
		h.fail(w, "failed to delete book", err)
		return
	}
	slog.Info("book deleted", "book_id", id)
	webutil.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Book deleted successfully",
	})
}

func (h *Handler) searchBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var year *int
	if raw := q.Get("year"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			webutil.Error(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = &n
	}

	books, err := h.store.SearchBooks(r.Context(), q.Get("q"), q.Get("author"), year)
	if err != nil {
		h.fail(w, "failed to search books", err)
		return
	}
	webutil.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(books),
		"books":   booksToJSON(books),
	})
}

// --- admin page ---

func (h *Handler) adminPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(adminPage)
}

// --- helpers ---

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	webutil.Error(w, http.StatusInternalServerError, "Internal server error")
}

// pathID parses the {id} path segment; non-numeric ids answer 404 like an
// unknown route.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		webutil.Error(w, http.StatusNotFound, "Not found")
		return 0, false
	}
	return uint(id), true
}
