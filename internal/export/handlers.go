package export

import (
	"bytes"
	"net/http"
	"strconv"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-invoice/internal/common"
	"github.com/noah-isme/backend-invoice/internal/coupon"
	"github.com/noah-isme/backend-invoice/internal/invoice"
	"github.com/noah-isme/backend-invoice/internal/obs"
)

// Handler serves preview and PDF renders of a posted draft.
type Handler struct {
	Svc      *invoice.Service
	Validate *validator.Validate
}

type exportRequest struct {
	Draft  invoice.Draft `json:"draft"`
	Coupon coupon.State  `json:"coupon"`
}

// PreviewView is the preview endpoint response.
type PreviewView struct {
	Preview Preview  `json:"preview"`
	Lines   []string `json:"lines"`
}

// Preview renders the posted draft as preview text.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	p, ok := h.build(w, r)
	if !ok {
		return
	}
	obs.RecordExport("preview", "ok")
	common.JSONData(w, http.StatusOK, PreviewView{Preview: p, Lines: p.Lines()})
}

// PDF renders the posted draft as an invoice.pdf attachment.
func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	p, ok := h.build(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	docID, err := RenderPDF(&buf, p, PDFOptions{})
	if err != nil {
		obs.RecordExport("pdf", "error")
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("invoice_pdf_failed")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to render pdf", nil)
		return
	}
	obs.RecordExport("pdf", "ok")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="invoice.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Document-Id", docID)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) build(w http.ResponseWriter, r *http.Request) (Preview, bool) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "invoice service not configured", nil)
		return Preview{}, false
	}
	var req exportRequest
	if err := common.DecodeAndValidate(r, h.Validate, &req); err != nil {
		common.WriteError(w, err)
		return Preview{}, false
	}
	draft := req.Draft.Normalize()
	totals := h.Svc.Totals(r.Context(), draft, req.Coupon)
	return BuildPreview(draft, totals), true
}
