package main

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/harrylevesque/ecoadmin/internal/admin"
	"github.com/harrylevesque/ecoadmin/internal/api"
	"github.com/harrylevesque/ecoadmin/internal/config"
	"github.com/harrylevesque/ecoadmin/internal/devserver"
	"github.com/harrylevesque/ecoadmin/internal/models"
	"github.com/harrylevesque/ecoadmin/internal/resource"
)

func setup(t *testing.T) (*api.Client, *admin.Catalog) {
	t.Helper()
	seed, err := devserver.DefaultSeed()
	if err != nil {
		t.Fatalf("DefaultSeed: %v", err)
	}
	store, accounts, err := devserver.Populate(seed, "admin@ecotrails.dev", "secret")
	if err != nil {
		t.Fatalf("Populate: %v", err)
	}
	srv := httptest.NewServer(devserver.New(store, accounts).NewRouter())
	t.Cleanup(srv.Close)
	return api.NewClient(), admin.NewCatalog(config.Hosts{}.All(srv.URL + devserver.APIPrefix))
}

func TestFieldFlags(t *testing.T) {
	var f fieldFlags
	if err := f.Set("name=Ella=Town"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := f.Set("broken"); err == nil {
		t.Fatal("expected an error for a value without =")
	}
	got := map[string]string{}
	_ = f.each(func(k, v string) error { got[k] = v; return nil })
	if got["name"] != "Ella=Town" {
		t.Errorf("expected the value to keep later '=', got %v", got)
	}
}

func TestRunCommands(t *testing.T) {
	client, catalog := setup(t)
	ctx := context.Background()

	out, err := run(ctx, client, catalog, options{cmd: "list", resource: "bookings", filter: "Pending"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list := out.(models.Collection); len(list) != 1 || list[0].ID("id") != "2" {
		t.Errorf("unexpected pending bookings %v", list)
	}

	out, err = run(ctx, client, catalog, options{cmd: "get", resource: "partners", id: "1"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec := out.(models.Record); rec.String("businessName") != "Ella Eco Lodge" {
		t.Errorf("unexpected partner %v", rec)
	}

	if _, err := run(ctx, client, catalog, options{cmd: "status", resource: "partners", id: "1", status: "approved"}); err != nil {
		t.Fatalf("status: %v", err)
	}
	out, _ = run(ctx, client, catalog, options{cmd: "list", resource: "partners", filter: "Approved"})
	if n := len(out.(models.Collection)); n != 2 {
		t.Errorf("expected 2 approved partners, got %d", n)
	}

	var fields fieldFlags
	_ = fields.Set("name=Knuckles")
	_ = fields.Set("description=Cloud forest range")
	if _, err := run(ctx, client, catalog, options{cmd: "create", resource: "locations", fields: fields}); err != nil {
		t.Fatalf("create: %v", err)
	}
	out, _ = run(ctx, client, catalog, options{cmd: "list", resource: "locations", query: `name == "Knuckles"`})
	created := out.(models.Collection)
	if len(created) != 1 {
		t.Fatalf("expected the new location, got %v", created)
	}
	id := created[0].ID("locationId")

	_, err = run(ctx, client, catalog, options{cmd: "delete", resource: "locations", id: id})
	if !errors.Is(err, resource.ErrDeleteNotConfirmed) {
		t.Fatalf("expected delete to need -yes, got %v", err)
	}
	if _, err := run(ctx, client, catalog, options{cmd: "delete", resource: "locations", id: id, yes: true}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	out, _ = run(ctx, client, catalog, options{cmd: "list", resource: "locations"})
	if n := len(out.(models.Collection)); n != 2 {
		t.Errorf("expected 2 locations after delete, got %d", n)
	}
}

func TestRunLoginAndDashboard(t *testing.T) {
	client, catalog := setup(t)
	ctx := context.Background()

	out, err := run(ctx, client, catalog, options{cmd: "login", email: "admin@ecotrails.dev", password: "secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if out.(map[string]any)["screen"] != admin.ScreenDashboard {
		t.Errorf("unexpected login result %v", out)
	}
	if _, err := run(ctx, client, catalog, options{cmd: "login", email: "admin@ecotrails.dev", password: "x"}); err == nil {
		t.Error("expected a rejected login")
	}

	out, err = run(ctx, client, catalog, options{cmd: "dashboard"})
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	rows := out.([]map[string]any)
	if len(rows) != 8 || rows[1]["label"] != "Users" || rows[1]["count"] != 3 {
		t.Errorf("unexpected dashboard rows %v", rows)
	}
}

func TestRunErrors(t *testing.T) {
	client, catalog := setup(t)
	ctx := context.Background()
	if _, err := run(ctx, client, catalog, options{cmd: "list"}); err == nil {
		t.Error("expected -resource required")
	}
	if _, err := run(ctx, client, catalog, options{cmd: "list", resource: "nope"}); err == nil {
		t.Error("expected unknown resource")
	}
	if _, err := run(ctx, client, catalog, options{cmd: "get", resource: "users"}); err == nil {
		t.Error("expected -id required")
	}
	if _, err := run(ctx, client, catalog, options{cmd: "status", resource: "users", id: "u-100", status: "Active"}); !errors.Is(err, resource.ErrUnsupported) {
		t.Errorf("users have no status actions, got %v", err)
	}
}
