package services

import (
	"context"
	"testing"

	"github.com/Dosada05/spikezone/identity"
	"github.com/Dosada05/spikezone/models"
)

func TestSyncAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.accounts.Sync(ctx, identity.Identity{UID: "uid-1", Email: "a@example.com", DisplayName: "Anna"})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if created.Role != models.RoleUser {
		t.Errorf("role = %s, want user", created.Role)
	}

	if _, err := env.accounts.GrantAdmin(ctx, "uid-1"); err != nil {
		t.Fatalf("GrantAdmin: %v", err)
	}

	again, err := env.accounts.Sync(ctx, identity.Identity{UID: "uid-1", Email: "", DisplayName: "Anna K."})
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if again.ID != created.ID || again.Email != "a@example.com" || again.DisplayName != "Anna K." {
		t.Errorf("account after resync = %+v", again)
	}
	if again.Role != models.RoleAdmin {
		t.Errorf("role = %s, sync must not change role", again.Role)
	}

	_, err = env.accounts.Sync(ctx, identity.Identity{})
	assertCode(t, err, CodeUnauthorized)
}

func TestRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.accounts.Sync(ctx, identity.Identity{UID: "user"})
	env.accounts.Sync(ctx, identity.Identity{UID: "boss"})
	env.accounts.GrantAdmin(ctx, "boss")

	_, err := env.accounts.RequireAdmin(ctx, "ghost")
	assertCode(t, err, CodeUnauthorized)

	_, err = env.accounts.RequireAdmin(ctx, "user")
	assertCode(t, err, CodeForbidden)

	if _, err := env.accounts.RequireAdmin(ctx, "boss"); err != nil {
		t.Errorf("RequireAdmin(boss): %v", err)
	}
}

func TestSetRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account, _ := env.accounts.Sync(ctx, identity.Identity{UID: "uid-1"})

	_, err := env.accounts.SetRole(ctx, account.ID, models.UserRole("owner"))
	assertCode(t, err, CodeValidation)

	_, err = env.accounts.SetRole(ctx, 999, models.RoleAdmin)
	assertCode(t, err, CodeNotFound)

	updated, err := env.accounts.SetRole(ctx, account.ID, models.RoleAdmin)
	if err != nil || updated.Role != models.RoleAdmin {
		t.Fatalf("SetRole = (%+v, %v)", updated, err)
	}

	_, err = env.accounts.GrantAdmin(ctx, "missing")
	assertCode(t, err, CodeNotFound)

	list, _ := env.accounts.List(ctx)
	if len(list) != 1 {
		t.Errorf("accounts = %d, want 1", len(list))
	}
}
