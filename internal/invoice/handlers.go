package invoice

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-invoice/internal/common"
	"github.com/noah-isme/backend-invoice/internal/coupon"
)

// Handler exposes the draft calculator over HTTP. It keeps no draft state:
// every request carries the revision the client is editing.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type draftRequest struct {
	Draft  Draft        `json:"draft"`
	Coupon coupon.State `json:"coupon"`
}

type totalsRequest struct {
	Draft          Draft           `json:"draft"`
	CouponDiscount decimal.Decimal `json:"couponDiscount" validate:"gte=0"`
}

type updateItemRequest struct {
	Draft  Draft        `json:"draft"`
	Coupon coupon.State `json:"coupon"`
	Field  string       `json:"field" validate:"required"`
	Value  string       `json:"value"`
}

type applyCouponRequest struct {
	Code   string       `json:"code" validate:"max=64"`
	Coupon coupon.State `json:"coupon"`
	Draft  *Draft       `json:"draft,omitempty"`
}

// DraftView is the response shape for every draft-returning endpoint.
type DraftView struct {
	Draft   Draft         `json:"draft"`
	Totals  Totals        `json:"totals"`
	Display DisplayTotals `json:"display"`
}

// CouponView is the response shape of the coupon endpoint.
type CouponView struct {
	Coupon  coupon.State   `json:"coupon"`
	Totals  *Totals        `json:"totals,omitempty"`
	Display *DisplayTotals `json:"display,omitempty"`
}

// NewDraft returns a fresh draft and its (zero) totals.
func (h *Handler) NewDraft(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	common.JSONData(w, http.StatusOK, h.view(r, NewDraft(), coupon.State{}))
}

// Totals computes totals for the posted draft and coupon discount.
func (h *Handler) Totals(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req totalsRequest
	if err := common.DecodeAndValidate(r, h.Validate, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	draft := req.Draft.Normalize()
	common.JSONData(w, http.StatusOK, h.view(r, draft, coupon.State{Discount: req.CouponDiscount}))
}

// AddItem appends a blank item to the posted draft.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req draftRequest
	if err := common.DecodeAndValidate(r, h.Validate, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	next := h.Svc.AddItem(r.Context(), req.Draft.Normalize())
	common.JSONData(w, http.StatusOK, h.view(r, next, req.Coupon))
}

// RemoveItem drops the item at {index} from the posted draft.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req draftRequest
	if err := common.DecodeAndValidate(r, h.Validate, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	draft := req.Draft.Normalize()
	index, ok := parseIndex(w, r, draft)
	if !ok {
		return
	}
	next, err := h.Svc.RemoveItem(r.Context(), draft, index)
	if err != nil {
		writeEditError(w, err, index, draft)
		return
	}
	common.JSONData(w, http.StatusOK, h.view(r, next, req.Coupon))
}

// UpdateItem replaces one field of the item at {index}.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req updateItemRequest
	if err := common.DecodeAndValidate(r, h.Validate, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	draft := req.Draft.Normalize()
	index, ok := parseIndex(w, r, draft)
	if !ok {
		return
	}
	next, err := h.Svc.UpdateItem(r.Context(), draft, index, req.Field, req.Value)
	if err != nil {
		writeEditError(w, err, index, draft)
		return
	}
	common.JSONData(w, http.StatusOK, h.view(r, next, req.Coupon))
}

// ApplyCoupon resolves a coupon code. A rejected or unresolvable code leaves
// the posted coupon state in place and reports it in the error details.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req applyCouponRequest
	if err := common.DecodeAndValidate(r, h.Validate, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	next, err := h.Svc.ApplyCoupon(r.Context(), req.Coupon, req.Code)
	if err != nil {
		details := map[string]any{"coupon": next}
		switch {
		case errors.Is(err, coupon.ErrRejected):
			common.JSONError(w, http.StatusUnprocessableEntity, "COUPON_REJECTED", "Invalid coupon code", details)
		case errors.Is(err, coupon.ErrInvalidAmount):
			common.JSONError(w, http.StatusBadGateway, "COUPON_INVALID_AMOUNT", "coupon service returned an unusable amount", details)
		case errors.Is(err, coupon.ErrUnavailable):
			common.JSONError(w, http.StatusServiceUnavailable, "COUPON_UNAVAILABLE", "coupon service unavailable, try again", details)
		default:
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to apply coupon", details)
		}
		return
	}
	view := CouponView{Coupon: next}
	if req.Draft != nil {
		draft := req.Draft.Normalize()
		totals := h.Svc.Totals(r.Context(), draft, next)
		display := totals.Display(draft.Currency)
		view.Totals = &totals
		view.Display = &display
	}
	common.JSONData(w, http.StatusOK, view)
}

func (h *Handler) view(r *http.Request, d Draft, state coupon.State) DraftView {
	totals := h.Svc.Totals(r.Context(), d, state)
	return DraftView{Draft: d, Totals: totals, Display: totals.Display(d.Currency)}
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "invoice service not configured", nil)
		return false
	}
	return true
}

func parseIndex(w http.ResponseWriter, r *http.Request, d Draft) (int, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "index"))
	index, err := strconv.Atoi(raw)
	if err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_INDEX", "item index must be an integer",
			map[string]any{"index": raw, "count": len(d.Items)})
		return 0, false
	}
	return index, true
}

func writeEditError(w http.ResponseWriter, err error, index int, d Draft) {
	switch {
	case errors.Is(err, ErrInvalidIndex):
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_INDEX", "item index out of range",
			map[string]any{"index": index, "count": len(d.Items)})
	case errors.Is(err, ErrUnknownField):
		common.JSONError(w, http.StatusBadRequest, "UNKNOWN_FIELD", err.Error(),
			map[string]any{"allowed": []Field{FieldDescription, FieldQuantity, FieldPrice, FieldTax}})
	default:
		common.WriteError(w, err)
	}
}
