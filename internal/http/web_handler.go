package http

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/0finn0the0human0/springbootTraining/internal/dto"
	"github.com/0finn0the0human0/springbootTraining/internal/service"
	"github.com/0finn0the0human0/springbootTraining/pkg/validator"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

const (
	formTemplate    = "form.html"
	resultsTemplate = "results.html"
)

type formPage struct {
	Name  string
	Error string
}

type resultsPage struct {
	Name     string
	Products []dto.ProductView
}

// webHandler serves the HTML search form.
type webHandler struct {
	logger     *slog.Logger
	validator  validator.Validator
	productSvc service.ProductService
}

func newWebHandler(log *slog.Logger, validator validator.Validator, productSvc service.ProductService) *webHandler {
	return &webHandler{
		logger:     log,
		validator:  validator,
		productSvc: productSvc,
	}
}

func (h *webHandler) ShowForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, formTemplate, formPage{})
}

// SubmitSearch validates the form and renders either the form with the first
// violation or the matching products.
func (h *webHandler) SubmitSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, formTemplate, formPage{Error: "Malformed form submission."})
		return
	}

	req := dto.ProductSearchRequest{Name: r.PostForm.Get("name")}
	if err := h.validator.Validate(req); err != nil {
		var fieldErrs validator.FieldErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			h.fail(w, r, err)
			return
		}
		h.render(w, r, http.StatusOK, formTemplate, formPage{Name: req.Name, Error: fieldErrs[0].Message})
		return
	}

	products, err := h.productSvc.Search(r.Context(), req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, resultsTemplate, resultsPage{Name: req.Name, Products: products})
}

func (h *webHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.ErrorContext(r.Context(), "error rendering template",
			slog.String("template", name), slog.Any("error", err))
	}
}

func (h *webHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "web search failed", slog.Any("error", err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
