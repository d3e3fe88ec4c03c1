package web

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/markletdev/marklet/internal/bookmarklet"
	"github.com/markletdev/marklet/internal/config"
	"github.com/markletdev/marklet/internal/errors"
	"github.com/markletdev/marklet/internal/store"
)

// maxUploadBytes caps import file uploads.
const maxUploadBytes = 16 << 20

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	store    *store.Store
	cfg      *config.Config
	renderer *Renderer
}

// HandleList handles GET /b — list bookmarklets, optionally filtered by ?q=.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	items := h.store.Search(query)

	h.renderer.renderPage(w, "list", ListPageData{
		PageData: PageData{
			Title:   "Bookmarklets",
			Version: h.renderer.version,
			Nav:     "bookmarklets",
		},
		Items:    items,
		Query:    query,
		HasQuery: strings.TrimSpace(query) != "",
		Imported: parseIntParam(r, "imported", 0),
	})
}

// HandleNewForm handles GET /b/new — blank create form.
func (h *Handlers) HandleNewForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, "form", FormPageData{
		PageData: PageData{
			Title:   "New bookmarklet",
			Version: h.renderer.version,
			Nav:     "new",
		},
		IsNew: true,
	})
}

// HandleCreate handles POST /b/new — create from form fields.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	name := r.FormValue("name")
	description := r.FormValue("description")
	code := r.FormValue("code")

	rec, err := h.store.Create(name, description, code)
	if err != nil {
		// Re-render the form with the entered values so nothing is lost.
		h.renderer.renderPageStatus(w, errorStatus(err), "form", FormPageData{
			PageData: PageData{
				Title:   "New bookmarklet",
				Version: h.renderer.version,
				Nav:     "new",
			},
			IsNew:       true,
			Name:        name,
			Description: description,
			Code:        code,
			FormError:   errorMessage(err),
		})
		return
	}

	http.Redirect(w, r, "/b/"+rec.ID, http.StatusSeeOther)
}

// HandleDetail handles GET /b/{id} — view a single bookmarklet.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rec, err := h.store.Get(id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	token := bookmarklet.Encode(rec.Payload())

	h.renderer.renderPage(w, "detail", DetailPageData{
		PageData: PageData{
			Title:   rec.Name,
			Version: h.renderer.version,
			Nav:     "bookmarklets",
		},
		Item:            rec,
		DescriptionHTML: renderMarkdown(rec.Description),
		ShareLink:       bookmarklet.ShareLink(h.cfg.ShareBase(), token),
	})
}

// HandleEditForm handles GET /b/{id}/edit — prefilled edit form.
func (h *Handlers) HandleEditForm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rec, err := h.store.Get(id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "form", FormPageData{
		PageData: PageData{
			Title:   "Edit " + rec.Name,
			Version: h.renderer.version,
			Nav:     "bookmarklets",
		},
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		Code:        rec.Code,
	})
}

// HandleUpdate handles POST /b/{id}/edit — replace fields from the form.
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	name := r.FormValue("name")
	description := r.FormValue("description")
	code := r.FormValue("code")

	rec, err := h.store.Update(id, name, description, code)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			h.renderer.renderError(w, r, err)
			return
		}
		h.renderer.renderPageStatus(w, errorStatus(err), "form", FormPageData{
			PageData: PageData{
				Title:   "Edit bookmarklet",
				Version: h.renderer.version,
				Nav:     "bookmarklets",
			},
			ID:          id,
			Name:        name,
			Description: description,
			Code:        code,
			FormError:   errorMessage(err),
		})
		return
	}

	http.Redirect(w, r, "/b/"+rec.ID, http.StatusSeeOther)
}

// HandleDelete handles POST /b/{id}/delete — delete a bookmarklet.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	deleted, err := h.store.Delete(id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"deleted": deleted,
			"id":      id,
		})
		return
	}

	http.Redirect(w, r, "/b", http.StatusSeeOther)
}

// HandleExport handles GET /export — download the collection.
// ?format=html downloads a Netscape bookmarks file instead of JSON.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")

	var (
		data     []byte
		err      error
		filename string
		ctype    string
	)
	switch format {
	case "", "json":
		data, err = h.store.ExportJSON()
		filename = "bookmarklets.json"
		ctype = "application/json"
	case "html":
		data, err = h.store.ExportHTML()
		filename = "bookmarklets.html"
		ctype = "text/html; charset=utf-8"
	default:
		h.renderer.renderError(w, r, errors.NewInvalidRequest(
			fmt.Sprintf("unknown export format: %s", format)))
		return
	}
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleImportPage handles GET /import — token and file import forms.
// A share link fragment is picked up client-side and pre-fills the token
// field; nothing is imported without an explicit submit.
func (h *Handlers) HandleImportPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, "import", ImportPageData{
		PageData: PageData{
			Title:   "Import",
			Version: h.renderer.version,
			Nav:     "import",
		},
	})
}

// HandleImportToken handles POST /import/token — import from a share token.
func (h *Handlers) HandleImportToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	payload, err := bookmarklet.Decode(bookmarklet.ExtractToken(r.FormValue("token")))
	if err != nil {
		h.renderImportError(w, err, "")
		return
	}

	rec, err := h.store.ImportShare(*payload)
	if err != nil {
		h.renderImportError(w, err, "")
		return
	}

	http.Redirect(w, r, "/b/"+rec.ID, http.StatusSeeOther)
}

// HandleImportFile handles POST /import/file — import an uploaded JSON file.
func (h *Handlers) HandleImportFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.renderImportError(w, errors.NewImport("upload too large or malformed"), "file")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.renderImportError(w, errors.NewImport("no file in upload"), "file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.renderImportError(w, errors.NewImport("failed to read upload"), "file")
		return
	}

	imported, err := h.store.ImportJSON(data)
	if err != nil {
		h.renderImportError(w, err, "file")
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/b?imported=%d", len(imported)), http.StatusSeeOther)
}

// renderImportError re-renders the import page with the failure message
// attached to the form that caused it ("" for token, "file" for upload).
func (h *Handlers) renderImportError(w http.ResponseWriter, err error, form string) {
	data := ImportPageData{
		PageData: PageData{
			Title:   "Import",
			Version: h.renderer.version,
			Nav:     "import",
		},
	}
	if form == "file" {
		data.FileError = errorMessage(err)
	} else {
		data.TokenError = errorMessage(err)
	}
	h.renderer.renderPageStatus(w, errorStatus(err), "import", data)
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// errorStatus extracts the HTTP status from a MarkletError, defaulting to 500.
func errorStatus(err error) int {
	var mErr *errors.MarkletError
	if stderrors.As(err, &mErr) {
		return mErr.Status
	}
	return http.StatusInternalServerError
}

// errorMessage extracts the user-facing message from a MarkletError.
func errorMessage(err error) string {
	var mErr *errors.MarkletError
	if stderrors.As(err, &mErr) {
		return mErr.Message
	}
	return "an internal error occurred"
}
