package security

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"identity-platform/internal/users"
)

func testRegistry() *Registry {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRegistry(log).
		Register(UserVoter{}).
		Register(AccountVoter{}).
		Register(ApplicationVoter{})
}

func plainUser(id int64) users.User {
	return users.User{ID: id, Login: "alice", Roles: []string{users.RoleUser}, ApplicationID: 1}
}

func adminUser(id int64) users.User {
	return users.User{ID: id, Login: "boss", Roles: []string{users.RoleUser, users.RoleAdmin}, ApplicationID: 1}
}

func TestRegistryUnknownSubjectDenies(t *testing.T) {
	r := testRegistry()

	ok, err := r.HasAccess("invoice", "list", plainUser(1), nil)
	if ok {
		t.Fatal("unknown subject must never allow")
	}
	var noVoter *NoVoterError
	if !errors.As(err, &noVoter) {
		t.Fatalf("expected NoVoterError, got %v", err)
	}
	if noVoter.Subject != "invoice" {
		t.Fatalf("expected subject %q in error, got %q", "invoice", noVoter.Subject)
	}
}

func TestRegistryUnsupportedRightDenies(t *testing.T) {
	r := testRegistry()

	ok, err := r.HasAccess("account", "delete", adminUser(1), nil)
	if ok {
		t.Fatal("unsupported right must never allow")
	}
	var unsupported *UnsupportedRightError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedRightError, got %v", err)
	}
}

func TestUserVoterAdminRights(t *testing.T) {
	r := testRegistry()
	admin := adminUser(2)
	plain := plainUser(3)

	for _, right := range []string{"create", "delete", "promote", "demote"} {
		if ok, err := r.HasAccess("user", right, admin, nil); err != nil || !ok {
			t.Fatalf("admin should hold right %q: ok=%v err=%v", right, ok, err)
		}
		if ok, _ := r.HasAccess("user", right, plain, nil); ok {
			t.Fatalf("plain user must not hold right %q", right)
		}
	}
}

func TestUserVoterReadRights(t *testing.T) {
	r := testRegistry()
	plain := plainUser(3)
	noRoles := users.User{ID: 9, Login: "ghost"}

	for _, right := range []string{"list", "details"} {
		if ok, err := r.HasAccess("user", right, plain, nil); err != nil || !ok {
			t.Fatalf("user should hold right %q: ok=%v err=%v", right, ok, err)
		}
		if ok, _ := r.HasAccess("user", right, noRoles, nil); ok {
			t.Fatalf("identity without roles must not hold right %q", right)
		}
	}
}

func TestUserVoterContextualUpdate(t *testing.T) {
	r := testRegistry()
	plain := plainUser(7)

	ok, err := r.HasAccess("user", "update", plain, Context{ContextKeyTargetID: "7"})
	if err != nil || !ok {
		t.Fatalf("user should update own record: ok=%v err=%v", ok, err)
	}

	ok, err = r.HasAccess("user", "update", plain, Context{ContextKeyTargetID: "9"})
	if err != nil {
		t.Fatalf("foreign target is a plain deny, not an error: %v", err)
	}
	if ok {
		t.Fatal("user must not update another user's record")
	}

	ok, err = r.HasAccess("user", "update", plain, nil)
	if ok {
		t.Fatal("missing context must never allow")
	}
	var missing *MissingContextError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingContextError, got %v", err)
	}
	if missing.Key != ContextKeyTargetID {
		t.Fatalf("expected missing key %q, got %q", ContextKeyTargetID, missing.Key)
	}

	if ok, err := r.HasAccess("user", "update", adminUser(2), nil); err != nil || !ok {
		t.Fatalf("admin should update without context: ok=%v err=%v", ok, err)
	}
}

func TestReadOnlyVoters(t *testing.T) {
	r := testRegistry()
	plain := plainUser(1)

	for _, subject := range []string{"account", "application"} {
		for _, right := range []string{"list", "details"} {
			if ok, err := r.HasAccess(subject, right, plain, nil); err != nil || !ok {
				t.Fatalf("user should hold %q on %q: ok=%v err=%v", right, subject, ok, err)
			}
		}
	}
}

func TestRoleHelpers(t *testing.T) {
	admin := adminUser(1)
	plain := plainUser(2)

	if !IsUser(plain) || !IsUser(admin) {
		t.Fatal("both identities carry ROLE_USER")
	}
	if IsAdmin(plain) {
		t.Fatal("plain user is not an admin")
	}
	if !IsAdmin(admin) {
		t.Fatal("admin identity should pass IsAdmin")
	}
	if !IsA(users.RoleAdmin, admin) || IsA(users.RoleAdmin, plain) {
		t.Fatal("IsA mismatch")
	}
	if !IsGranted(admin, users.RoleUser, users.RoleAdmin) {
		t.Fatal("admin holds both roles")
	}
	if IsGranted(plain, users.RoleUser, users.RoleAdmin) {
		t.Fatal("plain user lacks the admin role")
	}
}
