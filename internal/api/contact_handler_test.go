package api

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestContactSubmit_RelaysMessage(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	router, _ := newTestRouter(t, db, newFakeStore(), sender)

	body := `{"name":"Ravi","email":"ravi@example.com","phone":"+91 88888 00000","message":"Quote for a 5kW rooftop system please."}`
	w := performRequest(t, router, http.MethodPost, "/api/contact", strings.NewReader(body), jsonHeaders(nil))
	mustStatus(t, w, http.StatusOK)

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 relayed message got %d", len(sender.sent))
	}
	if sender.sent[0].Name != "Ravi" {
		t.Fatalf("unexpected relayed message: %+v", sender.sent[0])
	}
	if !strings.Contains(w.Body.String(), `"success":true`) {
		t.Fatalf("expected success body got %s", w.Body.String())
	}
}

func TestContactSubmit_TransportFailure(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{err: errors.New("smtp connection refused")}
	router, _ := newTestRouter(t, db, newFakeStore(), sender)

	body := `{"name":"Ravi","email":"ravi@example.com","message":"hello"}`
	w := performRequest(t, router, http.MethodPost, "/api/contact", strings.NewReader(body), jsonHeaders(nil))
	mustStatus(t, w, http.StatusInternalServerError)
}

func TestContactSubmit_MessageEmbeddedVerbatim(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	router, _ := newTestRouter(t, db, newFakeStore(), sender)

	// Markup in the message is passed through untouched; the template does
	// not escape it. Kept as a pinned, visible behavior of the relay.
	body := `{"name":"Ravi","email":"ravi@example.com","message":"<script>alert(1)</script>"}`
	w := performRequest(t, router, http.MethodPost, "/api/contact", strings.NewReader(body), jsonHeaders(nil))
	mustStatus(t, w, http.StatusOK)

	if sender.sent[0].Message != "<script>alert(1)</script>" {
		t.Fatalf("expected literal markup in relayed message, got %q", sender.sent[0].Message)
	}
}

func TestContactSubmit_RequiresFields(t *testing.T) {
	db := newTestDB(t)
	router, _ := newTestRouter(t, db, newFakeStore(), &fakeSender{})

	w := performRequest(t, router, http.MethodPost, "/api/contact", strings.NewReader(`{"name":"Ravi"}`), jsonHeaders(nil))
	mustStatus(t, w, http.StatusBadRequest)
}
