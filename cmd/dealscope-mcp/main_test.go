package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/use-agent/dealscope/models"
)

func TestAPICall_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":"contact is required","code":"INVALID_INPUT"}`))
	}))
	defer srv.Close()

	var out models.AlertResponse
	err := apiCall(context.Background(), srv.Client(), http.MethodPost, srv.URL+"/api/subscribe", map[string]string{}, &out)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "[INVALID_INPUT] contact is required" {
		t.Errorf("error = %q", got)
	}
}

func TestAPICall_DecodesSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		w.Write([]byte(`{"success":true,"alerts":[{"id":"a1","keyword":"laptop"}]}`))
	}))
	defer srv.Close()

	var out models.AlertsResponse
	if err := apiCall(context.Background(), srv.Client(), http.MethodGet, srv.URL+"/api/alerts", nil, &out); err != nil {
		t.Fatalf("apiCall: %v", err)
	}
	if len(out.Alerts) != 1 || out.Alerts[0].ID != "a1" {
		t.Errorf("alerts = %+v", out.Alerts)
	}
}

func TestFormatDeals(t *testing.T) {
	pct := 25.0
	resp := &models.ScrapeResponse{
		Success:    true,
		Keyword:    "laptop",
		CountAll:   1,
		SiteErrors: map[string]string{"nykaa": "navigation failed"},
		Items: []models.RawItem{{
			Site:              "amazon",
			Title:             "Laptop 15",
			PriceText:         "30,000",
			OriginalPriceText: "40,000",
			DiscountPercent:   &pct,
			URL:               "https://www.amazon.in/dp/X",
		}},
	}

	got := formatDeals(resp)
	for _, want := range []string{
		"Products: 1",
		"Warning: nykaa failed: navigation failed",
		"[amazon] Laptop 15",
		"Price: ₹30,000 (was ₹40,000), 25% off",
		"https://www.amazon.in/dp/X",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}
