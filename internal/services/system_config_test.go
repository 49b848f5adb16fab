package services

import "testing"

func TestSystemConfigService_SetAndGet(t *testing.T) {
	db := newTestDB(t)
	svc := NewSystemConfigService(db)

	if got := svc.Get("missing_key"); got != "" {
		t.Errorf("Get(missing) = %q, expected empty", got)
	}
	if got := svc.GetWithDefault("missing_key", "fallback"); got != "fallback" {
		t.Errorf("GetWithDefault(missing) = %q, expected %q", got, "fallback")
	}

	if err := svc.Set("site_name", "AdminBase"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := svc.Get("site_name"); got != "AdminBase" {
		t.Errorf("Get() = %q, expected %q", got, "AdminBase")
	}

	// Upsert overwrites.
	if err := svc.Set("site_name", "Renamed"); err != nil {
		t.Fatalf("second Set() error = %v", err)
	}
	if got := svc.Get("site_name"); got != "Renamed" {
		t.Errorf("Get() after overwrite = %q, expected %q", got, "Renamed")
	}
}

func TestSystemConfigService_TypedGetters(t *testing.T) {
	db := newTestDB(t)
	svc := NewSystemConfigService(db)

	svc.Set("retention_days", "30")
	if got := svc.GetInt("retention_days", 90); got != 30 {
		t.Errorf("GetInt() = %d, expected 30", got)
	}
	if got := svc.GetInt("missing_int", 90); got != 90 {
		t.Errorf("GetInt(missing) = %d, expected default 90", got)
	}
	svc.Set("broken_int", "not-a-number")
	if got := svc.GetInt("broken_int", 7); got != 7 {
		t.Errorf("GetInt(broken) = %d, expected default 7", got)
	}

	svc.Set("email_enabled", "true")
	if !svc.GetBool("email_enabled") {
		t.Error("GetBool(true) = false")
	}
	if svc.GetBool("missing_bool") {
		t.Error("GetBool(missing) = true")
	}
}

func TestSystemConfigService_SetBatch(t *testing.T) {
	db := newTestDB(t)
	svc := NewSystemConfigService(db)

	err := svc.SetBatch(map[string]string{
		"email_host": "smtp.example.com",
		"email_port": "587",
	})
	if err != nil {
		t.Fatalf("SetBatch() error = %v", err)
	}

	if got := svc.Get("email_host"); got != "smtp.example.com" {
		t.Errorf("email_host = %q", got)
	}
	if got := svc.GetInt("email_port", 25); got != 587 {
		t.Errorf("email_port = %d", got)
	}
}
