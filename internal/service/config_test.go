package service_test

import (
	"testing"

	"github.com/saadjs/daykcal/internal/service"
)

func TestConfigDefaultsAndValidation(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	offset, err := service.UTCOffset(db)
	if err != nil || offset != 3 {
		t.Fatalf("expected seeded offset 3, got %d (%v)", offset, err)
	}
	provider, model, err := service.EstimatorProvider(db)
	if err != nil || provider != "gemini" || model != "" {
		t.Fatalf("expected gemini with no model, got %q %q (%v)", provider, model, err)
	}

	for _, kv := range [][2]string{
		{"utc_offset_hours", "three"},
		{"utc_offset_hours", "15"},
		{"estimator_provider", "bard"},
		{"  ", "x"},
	} {
		if err := service.SetConfig(db, kv[0], kv[1]); err == nil {
			t.Fatalf("expected %s=%s to be rejected", kv[0], kv[1])
		}
	}

	if err := service.SetConfig(db, "UTC_OFFSET_HOURS", "-5"); err != nil {
		t.Fatalf("set offset: %v", err)
	}
	if err := service.SetConfig(db, "estimator_provider", "OpenAI"); err != nil {
		t.Fatalf("set provider: %v", err)
	}
	if err := service.SetConfig(db, "estimator_model", "gpt-4o"); err != nil {
		t.Fatalf("set model: %v", err)
	}
	offset, _ = service.UTCOffset(db)
	provider, model, _ = service.EstimatorProvider(db)
	if offset != -5 || provider != "openai" || model != "gpt-4o" {
		t.Fatalf("unexpected config: offset=%d provider=%s model=%s", offset, provider, model)
	}

	all, err := service.ListConfig(db)
	if err != nil {
		t.Fatalf("list config: %v", err)
	}
	if len(all) != 3 || all["utc_offset_hours"] != "-5" {
		t.Fatalf("unexpected config list: %+v", all)
	}
}
