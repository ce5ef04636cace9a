package server_test

import (
	"fmt"
	"net/http/httptest"
	"testing"
)

func TestItemAuditLogs(t *testing.T) {
	app, _ := newTestApp(t)
	var id int64

	entries := captureLogs(t, func() {
		_, body := do(t, app, multipartReq(t, "POST", "/api/service_items", map[string]string{"name": "Locksmith"}, []byte{9, 9}))
		id = int64(decode[map[string]any](t, body)["id"].(float64))
		do(t, app, httptest.NewRequest("DELETE", fmt.Sprintf("/api/service_items?id=%d", id), nil))
	})

	created, ok := findLog(entries, "items.create")
	if !ok {
		t.Fatal("items.create audit line missing")
	}
	if created.Level != "audit" || created.Category != "service" {
		t.Fatalf("create entry: %+v", created)
	}
	if created.Fields["image_bytes"] != float64(2) {
		t.Fatalf("image_bytes: %v", created.Fields["image_bytes"])
	}
	deleted, ok := findLog(entries, "items.delete")
	if !ok || deleted.Fields["id"] != float64(id) {
		t.Fatalf("items.delete audit line: %+v ok=%v", deleted, ok)
	}
}

func TestAdminActionsCarryUserID(t *testing.T) {
	app, _ := newTestApp(t)
	sid, tok := loginAs(t, app, adminEmail, adminPass)

	entries := captureLogs(t, func() {
		do(t, app, adminMultipart(t, "/admin/leisure/items", map[string]string{"name": "Arcade"}, sid, tok))
	})
	e, ok := findLog(entries, "admin.items.create")
	if !ok {
		t.Fatal("admin.items.create audit line missing")
	}
	if e.UserID != "u-admin" || e.Category != "leisure" {
		t.Fatalf("entry: %+v", e)
	}
}

func TestValidationFailureIsLogged(t *testing.T) {
	app, _ := newTestApp(t)
	entries := captureLogs(t, func() {
		do(t, app, httptest.NewRequest("DELETE", "/api/food_items?id=abc", nil))
	})
	e, ok := findLog(entries, "validation.fail")
	if !ok || e.Level != "warn" || e.Fields["field"] != "id" {
		t.Fatalf("validation.fail entry: %+v ok=%v", e, ok)
	}
}
