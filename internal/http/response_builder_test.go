package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nomadprices/internal/core"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		BodyString("test").
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger should not be set without triggers")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerPriceAdded(core.PriceEntry{ID: "42", Location: "Bangkok, Thailand", Category: "Food"}).
		TriggerFormReset().
		TriggerSuccessNotification("Price added").
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	if trigger == "" {
		t.Fatal("HX-Trigger header not set")
	}

	expectedParts := []string{
		`"price:added"`,
		`"form:reset"`,
		`"show-notification"`,
		`"id":"42"`,
		`"location":"Bangkok, Thailand"`,
		`"type":"success"`,
	}
	for _, part := range expectedParts {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %q: %s", part, trigger)
		}
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *HTMXResponseBuilder
		code    int
	}{
		{"bad request", BadRequestError("bad"), http.StatusBadRequest},
		{"internal", InternalServerError("boom"), http.StatusInternalServerError},
		{"escaped", ErrorResponse(http.StatusTeapot, "<b>x</b>"), http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.code {
				t.Errorf("Status code = %d, want %d", w.Code, tt.code)
			}
			if strings.Contains(w.Body.String(), "<b>") {
				t.Errorf("body not escaped: %s", w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestValidationErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	ValidationErrorResponse(&core.ValidationError{Field: core.FieldPrice, Err: core.ErrNegativePrice}).Write(w)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Status code = %d", w.Code)
	}
	if got := w.Header().Get("X-Invalid-Field"); got != core.FieldPrice {
		t.Errorf("X-Invalid-Field = %q", got)
	}
	if !strings.Contains(w.Body.String(), core.ErrNegativePrice.Error()) {
		t.Errorf("body = %s", w.Body.String())
	}
	if !strings.Contains(w.Header().Get("HX-Trigger"), `"type":"error"`) {
		t.Errorf("missing error notification: %s", w.Header().Get("HX-Trigger"))
	}
}
