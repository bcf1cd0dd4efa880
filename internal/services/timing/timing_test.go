package timing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"canteen-system/internal/logger"
	"canteen-system/internal/models"
)

type memoryRepo struct {
	timing *models.CanteenTiming
	err    error
}

func (r *memoryRepo) Get(ctx context.Context) (models.CanteenTiming, bool, error) {
	if r.err != nil {
		return models.CanteenTiming{}, false, r.err
	}
	if r.timing == nil {
		return models.CanteenTiming{}, false, nil
	}
	return *r.timing, true, nil
}

func (r *memoryRepo) Save(ctx context.Context, timing models.CanteenTiming) error {
	r.timing = &timing
	return nil
}

func clock(t *testing.T, value string) models.ClockTime {
	t.Helper()
	c, err := models.ParseClockTime(value)
	if err != nil {
		t.Fatalf("ParseClockTime(%q): %v", value, err)
	}
	return c
}

func TestCurrentFallsBackToDefaults(t *testing.T) {
	defaults := models.CanteenTiming{OpeningTime: clock(t, "09:00"), ClosingTime: clock(t, "17:00")}
	repo := &memoryRepo{}
	svc := NewService(repo, defaults, logger.Discard())

	got, err := svc.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got != defaults {
		t.Errorf("got %+v, want defaults", got)
	}

	if _, err := svc.Update(context.Background(), &models.UpdateTimingRequest{OpeningTime: "07:30", ClosingTime: "14:00"}, ""); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = svc.Current(context.Background())
	if got.OpeningTime.Duration() != 7*time.Hour+30*time.Minute {
		t.Errorf("opening = %s, want 07:30:00", got.OpeningTime)
	}

	repo.err = errors.New("connection refused")
	if _, err := svc.Current(context.Background()); err == nil {
		t.Error("expected repository error to surface")
	}
}

func TestUpdateRejectsInvalidHours(t *testing.T) {
	svc := NewService(&memoryRepo{}, models.CanteenTiming{}, logger.Discard())

	tests := []models.UpdateTimingRequest{
		{OpeningTime: "9am", ClosingTime: "17:00"},
		{OpeningTime: "09:00", ClosingTime: "25:00"},
		{OpeningTime: "17:00", ClosingTime: "09:00"},
		{OpeningTime: "12:00", ClosingTime: "12:00"},
	}
	for _, req := range tests {
		if _, err := svc.Update(context.Background(), &req, ""); err == nil {
			t.Errorf("Update(%+v) succeeded, want error", req)
		}
	}
}

func TestHandlers(t *testing.T) {
	h := NewHandler(NewService(&memoryRepo{}, models.CanteenTiming{OpeningTime: clock(t, "09:00"), ClosingTime: clock(t, "17:00")}, logger.Discard()), logger.Discard())

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/timings/", nil))
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["opening_time"] != "09:00:00" || body["closing_time"] != "17:00:00" {
		t.Errorf("unexpected timing %v", body)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/timings/", strings.NewReader(`{"opening_time": "18:00", "closing_time": "08:00"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid update status = %d, want 400", rec.Code)
	}
}
