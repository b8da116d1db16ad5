package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type couponPayload struct {
	Code     string `json:"code" validate:"required,max=8"`
	Currency string `json:"currency" validate:"omitempty,oneof=INR"`
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]ErrorBody {
	t.Helper()
	var body map[string]ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestDecodeAndValidate(t *testing.T) {
	v := NewValidator()

	var ok couponPayload
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"ABC","currency":"INR"}`))
	require.NoError(t, DecodeAndValidate(req, v, &ok))
	require.Equal(t, "ABC", ok.Code)

	var bad couponPayload
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"TOO-LONG-CODE","currency":"USD"}`))
	err := DecodeAndValidate(req, v, &bad)
	require.Error(t, err)

	rr := httptest.NewRecorder()
	WriteError(rr, err)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeBody(t, rr)
	require.Equal(t, "VALIDATION_ERROR", body["error"].Code)

	details, ok2 := err.(*AppError).Details.([]FieldError)
	require.True(t, ok2)
	require.Len(t, details, 2)
	require.Equal(t, "code", details[0].Field)
	require.Equal(t, "max", details[0].Rule)
	require.Equal(t, "currency", details[1].Field)
}

type amountPayload struct {
	Discount decimal.Decimal `json:"discount" validate:"gte=0"`
}

func TestDecodeAndValidateDecimalAmounts(t *testing.T) {
	v := NewValidator()
	for _, raw := range []string{`"0"`, `"100.50"`, `"0.001"`} {
		var p amountPayload
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"discount":`+raw+`}`))
		require.NoError(t, DecodeAndValidate(req, v, &p), raw)
	}

	var p amountPayload
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"discount":"-0.01"}`))
	err := DecodeAndValidate(req, v, &p)
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VALIDATION_ERROR", appErr.Code)
	require.Equal(t, []FieldError{{Field: "discount", Rule: "gte", Param: "0"}}, appErr.Details)
}

func TestDecodeAndValidateMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":    ``,
		"syntax":   `{"code":`,
		"trailing": `{"code":"A"} {"code":"B"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var dst couponPayload
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
			err := DecodeAndValidate(req, nil, &dst)
			require.Error(t, err)
			var appErr *AppError
			require.ErrorAs(t, err, &appErr)
			require.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
		})
	}
}

func TestDecodeAndValidateBodyLimit(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"`+strings.Repeat("A", 64)+`"}`))
	req.Body = http.MaxBytesReader(rr, req.Body, 16)

	var dst couponPayload
	err := DecodeAndValidate(req, nil, &dst)
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusRequestEntityTooLarge, appErr.HTTPStatus)
}

func TestWriteErrorFallsBackToInternal(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, http.ErrHandlerTimeout)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "INTERNAL", decodeBody(t, rr)["error"].Code)
}

func TestAppErrorWithDetailsCopies(t *testing.T) {
	base := NewAppError("COUPON_REJECTED", "coupon rejected", http.StatusUnprocessableEntity, nil)
	withDetails := base.WithDetails(map[string]string{"code": "X"})
	require.Nil(t, base.Details)
	require.NotNil(t, withDetails.Details)
	require.True(t, IsAppError(withDetails))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:5123"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	require.Equal(t, "203.0.113.9", ClientIP(req))

	req.RemoteAddr = ""
	require.Equal(t, "198.51.100.1", ClientIP(req))

	req.Header.Del("X-Forwarded-For")
	req.Header.Set("X-Real-IP", "192.0.2.7")
	require.Equal(t, "192.0.2.7", ClientIP(req))
}
