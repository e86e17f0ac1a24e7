package inventory

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"webcourse/internal/common"
	"webcourse/internal/webutil"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Handler serves the inventory HTML pages.
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

// Routes registers all inventory routes on a fresh mux.
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

type indexPage struct {
	Flash         *webutil.Flash
	Products      []Product
	Search        string
	TotalQuantity int
	TotalValue    float64
}

type formPage struct {
	Title   string
	Action  string
	Error   string
	Product Product
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	products, err := h.store.ListProducts(r.Context(), search)
	if err != nil {
		h.fail(w, "failed to list products", err)
		return
	}
	quantity, value := Totals(products)
	h.render(w, http.StatusOK, "index.html", indexPage{
		Flash:         webutil.PopFlash(w, r),
		Products:      products,
		Search:        search,
		TotalQuantity: quantity,
		TotalValue:    value,
	})
}

func (h *Handler) addForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "product_form.html", formPage{
		Title:  "Add Product",
		Action: "/add",
	})
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	p, msg := productFromForm(r, 0)
	if msg != "" {
		h.render(w, http.StatusBadRequest, "product_form.html", formPage{
			Title: "Add Product", Action: "/add", Error: msg, Product: p,
		})
		return
	}

	if err := h.store.CreateProduct(r.Context(), &p); err != nil {
		h.fail(w, "failed to create product", err)
		return
	}
	slog.Info("product created", "product_id", p.ID, "name", p.Name)
	webutil.SetFlash(w, "success", fmt.Sprintf("%q added successfully!", p.Name))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.store.GetProduct(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, "failed to get product", err)
		return
	}
	h.render(w, http.StatusOK, "product_form.html", formPage{
		Title:   "Edit Product",
		Action:  "/edit/" + strconv.FormatUint(uint64(id), 10),
		Product: *p,
	})
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, msg := productFromForm(r, id)
	action := "/edit/" + strconv.FormatUint(uint64(id), 10)
	if msg != "" {
		h.render(w, http.StatusBadRequest, "product_form.html", formPage{
			Title: "Edit Product", Action: action, Error: msg, Product: p,
		})
		return
	}

	err := h.store.UpdateProduct(r.Context(), &p)
	if errors.Is(err, common.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, "failed to update product", err)
		return
	}
	webutil.SetFlash(w, "success", fmt.Sprintf("%q updated successfully!", p.Name))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.store.GetProduct(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, "failed to get product", err)
		return
	}
	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		h.fail(w, "failed to delete product", err)
		return
	}
	webutil.SetFlash(w, "danger", fmt.Sprintf("%q deleted successfully!", p.Name))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// productFromForm parses and validates the product form. Quantity defaults
// to 0 when blank; name and a valid price are required.
func productFromForm(r *http.Request, id uint) (Product, string) {
	p := Product{ID: id, Name: r.FormValue("name")}

	if raw := r.FormValue("quantity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return p, "Quantity must be a non-negative number."
		}
		p.Quantity = n
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil || price < 0 {
		return p, "Price must be a non-negative number."
	}
	p.Price = price

	if p.Name == "" {
		return p, "Name is required."
	}
	return p, ""
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
