package guard

import (
	"testing"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/models"
	"github.com/google/uuid"
)

func userWithRole(role models.UserRole) *models.User {
	return &models.User{ID: uuid.New(), Name: "Teste", Role: role}
}

func TestNormalizePathIdempotent(t *testing.T) {
	paths := []string{"/Dashboard/", "  /LOGIN ", "", "/", "/loja/Acme/", "/dashboard/settings"}
	for _, p := range paths {
		once := NormalizePath(p)
		twice := NormalizePath(once)
		if once != twice {
			t.Errorf("NormalizePath not idempotent for %q: %q != %q", p, once, twice)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/Dashboard/", "/dashboard"},
		{"", "/"},
		{"/", "/"},
		{"  /Login ", "/login"},
		{"/loja/Acme", "/loja/acme"},
	}
	for _, tt := range tests {
		if got := NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEvaluateRoutingTable(t *testing.T) {
	admin := userWithRole(models.RoleAdmin)
	super := userWithRole(models.RoleSuperAdmin)

	tests := []struct {
		name     string
		path     string
		loading  bool
		user     *models.User
		want     View
		redirect string
	}{
		{"root anonymous", "/", false, nil, ViewLanding, ""},
		{"root authenticated", "/", false, admin, ViewLanding, ""},
		{"login anonymous", "/login", false, nil, ViewLogin, ""},
		{"login authenticated redirects", "/login", false, admin, ViewRedirect, "/dashboard"},
		{"signup authenticated redirects", "/signup", false, admin, ViewRedirect, "/dashboard"},
		{"setup master without auth", "/setup-master", false, nil, ViewSetupMaster, ""},
		{"storefront without auth", "/loja/acme", false, nil, ViewStorefront, ""},
		{"storefront with auth", "/loja/acme", false, admin, ViewStorefront, ""},
		{"dashboard unauthenticated redirects", "/dashboard", false, nil, ViewRedirect, "/login"},
		{"dashboard settings unauthenticated redirects", "/dashboard/settings", false, nil, ViewRedirect, "/login"},
		{"dashboard admin", "/dashboard", false, admin, ViewTenant, ""},
		{"dashboard super admin", "/dashboard", false, super, ViewSuperAdmin, ""},
		{"dashboard companies super admin", "/dashboard/companies", false, super, ViewSuperAdmin, ""},
		{"dashboard settings", "/dashboard/settings", false, admin, ViewSettings, ""},
		{"unmatched falls open to landing", "/nao-existe", false, nil, ViewLanding, ""},
		{"loading gates dashboard", "/dashboard", true, nil, ViewLoading, ""},
		{"loading gates login", "/login", true, nil, ViewLoading, ""},
		{"loading does not gate storefront", "/loja/acme", true, nil, ViewStorefront, ""},
		{"loading does not gate landing", "/", true, nil, ViewLanding, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.path, tt.loading, tt.user)
			if got.View != tt.want {
				t.Fatalf("Evaluate(%q) view = %q, want %q", tt.path, got.View, tt.want)
			}
			if got.RedirectTo != tt.redirect {
				t.Fatalf("Evaluate(%q) redirect = %q, want %q", tt.path, got.RedirectTo, tt.redirect)
			}
		})
	}
}

func TestEvaluateCaseAndTrailingSlashInsensitive(t *testing.T) {
	admin := userWithRole(models.RoleAdmin)

	upper := Evaluate("/Dashboard/", false, admin)
	lower := Evaluate("/dashboard", false, admin)

	if upper != lower {
		t.Fatalf("guard decisions diverge: %+v vs %+v", upper, lower)
	}
	if upper.View != ViewTenant {
		t.Fatalf("view = %q, want %q", upper.View, ViewTenant)
	}
}
