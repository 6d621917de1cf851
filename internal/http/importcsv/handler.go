package importcsv

import (
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/balancea/internal/http/respond"
	"github.com/MrJamesThe3rd/balancea/internal/importer"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

const maxUploadSize = 10 << 20

type Handler struct {
	svc *importer.Service
}

func NewHandler(svc *importer.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/formats", h.formats)
	r.Post("/preview", h.preview)
	r.Post("/", h.importFile)
}

type paramsDTO struct {
	Date        string           `json:"date"`
	Description string           `json:"description"`
	Amount      string           `json:"amount"`
	Kind        transaction.Type `json:"kind"`
	Category    string           `json:"category"`
}

type importedDTO struct {
	ID uuid.UUID `json:"id"`
	paramsDTO
}

type skippedDTO struct {
	Incoming   paramsDTO `json:"incoming"`
	ExistingID uuid.UUID `json:"existing_id"`
}

type invalidDTO struct {
	Row   paramsDTO `json:"row"`
	Error string    `json:"error"`
}

type importResponse struct {
	Imported []importedDTO `json:"imported"`
	Skipped  []skippedDTO  `json:"skipped"`
	Invalid  []invalidDTO  `json:"invalid"`
}

func (h *Handler) formats(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, importer.Formats())
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	format, file, ok := upload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	params, err := h.svc.Parse(r.Context(), format, file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]paramsDTO, len(params))
	for i, p := range params {
		resp[i] = toParamsDTO(p)
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	format, file, ok := upload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	res, err := h.svc.Import(r.Context(), format, file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := importResponse{
		Imported: make([]importedDTO, 0, len(res.Imported)),
		Skipped:  make([]skippedDTO, 0, len(res.Skipped)),
		Invalid:  make([]invalidDTO, 0, len(res.Invalid)),
	}

	for _, tx := range res.Imported {
		resp.Imported = append(resp.Imported, importedDTO{
			ID: tx.ID,
			paramsDTO: toParamsDTO(transaction.CreateParams{
				Date:        tx.Date,
				Description: tx.Description,
				Amount:      tx.Amount,
				Type:        tx.Type,
				Category:    tx.Category,
			}),
		})
	}

	for _, c := range res.Skipped {
		resp.Skipped = append(resp.Skipped, skippedDTO{Incoming: toParamsDTO(c.Incoming), ExistingID: c.Existing.ID})
	}

	for _, inv := range res.Invalid {
		resp.Invalid = append(resp.Invalid, invalidDTO{Row: toParamsDTO(inv.Params), Error: inv.Err.Error()})
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

func upload(w http.ResponseWriter, r *http.Request) (importer.Format, multipart.File, bool) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Message(w, r, http.StatusBadRequest, "failed to parse form: "+err.Error())
		return "", nil, false
	}

	format := importer.Format(r.FormValue("format"))
	if format == "" {
		format = importer.FormatLedger
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Message(w, r, http.StatusBadRequest, "file field is required")
		return "", nil, false
	}

	return format, file, true
}

func toParamsDTO(p transaction.CreateParams) paramsDTO {
	dto := paramsDTO{
		Description: p.Description,
		Amount:      p.Amount.StringFixed(2),
		Kind:        p.Type,
		Category:    p.Category,
	}

	if !p.Date.IsZero() {
		dto.Date = p.Date.Format(time.DateOnly)
	}

	return dto
}
