package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCoordinationClientFetchPending(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/webhook" {
			t.Errorf("path = %q, want /webhook", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"invoices":[{"_id":"A1","customer":{"name":"Acme"},"total":300,"status":"pending"}]}`))
	}))
	defer srv.Close()

	client := NewCoordinationClient(srv.URL, "secret")
	invoices, err := client.FetchPending(context.Background())
	if err != nil {
		t.Fatalf("FetchPending() error: %v", err)
	}
	if got["apiKey"] != "secret" || got["event"] != "sync-request" {
		t.Errorf("request envelope = %v", got)
	}
	if len(invoices) != 1 || invoices[0].ID != "A1" || invoices[0].Customer.Name != "Acme" {
		t.Errorf("invoices = %+v", invoices)
	}
}

func TestCoordinationClientReportStatus(t *testing.T) {
	var got struct {
		APIKey string `json:"apiKey"`
		Event  string `json:"event"`
		Data   struct {
			InvoiceID string `json:"invoiceId"`
			Status    string `json:"status"`
			Error     string `json:"error"`
		} `json:"data"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"updated":true}`))
	}))
	defer srv.Close()

	client := NewCoordinationClient(srv.URL, "secret")
	if err := client.ReportStatus(context.Background(), "A1", "error", "Invalid ledger"); err != nil {
		t.Fatalf("ReportStatus() error: %v", err)
	}
	if got.Event != "sync-status" || got.Data.InvoiceID != "A1" || got.Data.Status != "error" || got.Data.Error != "Invalid ledger" {
		t.Errorf("request = %+v", got)
	}
}

func TestCoordinationClientUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewCoordinationClient(srv.URL, "wrong")
	if _, err := client.FetchPending(context.Background()); err == nil {
		t.Error("FetchPending() should surface a rejected key")
	}
}

func TestCoordinationClientBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>proxy error</html>`))
	}))
	defer srv.Close()

	client := NewCoordinationClient(srv.URL, "secret")
	if _, err := client.FetchPending(context.Background()); err == nil {
		t.Error("FetchPending() should fail on an unparseable body")
	}
}
