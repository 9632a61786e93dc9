package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"bloodbank/internal/domain"
)

func TestFailMapsDomainErrors(t *testing.T) {
	app := &App{Logger: zerolog.Nop()}
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.Invalid("quantity", "must be positive"), http.StatusBadRequest, "validation_failed"},
		{domain.NotFound("donor", "S1234567A"), http.StatusNotFound, "not_found"},
		{fmt.Errorf("insert donor: %w", domain.ErrDuplicateKey), http.StatusConflict, "duplicate"},
		{&domain.AlreadyUsedError{DonationIDs: []int64{3}}, http.StatusConflict, "already_used"},
		{domain.ErrAlreadyFulfilled, http.StatusConflict, "already_fulfilled"},
		{&domain.StoreError{Op: "get donor", Err: errors.New("conn refused")}, http.StatusServiceUnavailable, "store_unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		app.fail(rr, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		if rr.Code != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, rr.Code, tc.status)
		}
		var body struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Error.Code != tc.code {
			t.Errorf("%v: code = %q, want %q", tc.err, body.Error.Code, tc.code)
		}
	}
}

func TestStoreFailureHidesCause(t *testing.T) {
	app := &App{Logger: zerolog.Nop()}
	rr := httptest.NewRecorder()
	app.fail(rr, httptest.NewRequest(http.MethodGet, "/", nil), &domain.StoreError{Op: "x", Err: errors.New("password=hunter2")})
	if strings.Contains(rr.Body.String(), "hunter2") {
		t.Fatalf("store error leaked: %s", rr.Body.String())
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	app := &App{}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"donationIds":[1],"extra":1}`))
	var body fulfillBody
	if err := app.decode(req, &body); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("decode error = %v, want validation", err)
	}
}

func TestListNeverNull(t *testing.T) {
	out, err := json.Marshal(list[domain.Donor](nil))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"items":[]}` {
		t.Fatalf("list(nil) = %s", out)
	}
}

func TestDonorPayloadDates(t *testing.T) {
	for _, raw := range []string{"1990-05-17", "1990-05-17T00:00:00Z"} {
		d, err := donorPayload{NRIC: "s1234567a", Name: "a", DateOfBirth: raw, BloodType: "o-"}.toDonor()
		if err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
		if d.DateOfBirth.Year() != 1990 || d.NRIC != "S1234567A" || d.BloodType != domain.BloodTypeONeg {
			t.Fatalf("%s: unexpected donor %+v", raw, d)
		}
	}
	if _, err := (donorPayload{DateOfBirth: "17/05/1990"}).toDonor(); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOpenAPIJSONHonoursETag(t *testing.T) {
	app := &App{}
	rr := httptest.NewRecorder()
	app.OpenAPIJSON(rr, httptest.NewRequest(http.MethodGet, "/v1/openapi.json", nil))
	if rr.Code != http.StatusOK || !json.Valid(rr.Body.Bytes()) {
		t.Fatalf("status = %d, valid json = %v", rr.Code, json.Valid(rr.Body.Bytes()))
	}
	etag := rr.Header().Get("ETag")

	req := httptest.NewRequest(http.MethodGet, "/v1/openapi.json", nil)
	req.Header.Set("If-None-Match", etag)
	rr = httptest.NewRecorder()
	app.OpenAPIJSON(rr, req)
	if rr.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", rr.Code)
	}
}
