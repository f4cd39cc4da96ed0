package router

import (
	"errors"
	"testing"
)

type recordingSurface struct {
	paths []string
	err   error
}

func (s *recordingSurface) Replace(path string) error {
	if s.err != nil {
		return s.err
	}
	s.paths = append(s.paths, path)
	return nil
}

func TestNavigateNormalizesLeadingSlash(t *testing.T) {
	surface := &recordingSurface{}
	r := New(surface, nil)

	r.Navigate("dashboard")

	if got := r.Location().Path; got != "/dashboard" {
		t.Fatalf("path = %q, want /dashboard", got)
	}
	if len(surface.paths) != 1 || surface.paths[0] != "/dashboard" {
		t.Fatalf("surface received %v, want [/dashboard]", surface.paths)
	}
}

func TestNavigateUpdatesStateWhenAddressBlocked(t *testing.T) {
	surface := &recordingSurface{err: errors.New("address mutation denied")}
	r := New(surface, nil)

	r.Navigate("/loja/acme")

	loc := r.Location()
	if loc.Path != "/loja/acme" {
		t.Fatalf("path = %q, want /loja/acme even with blocked surface", loc.Path)
	}
	if loc.Params["subdomain"] != "acme" {
		t.Fatalf("subdomain param = %q, want acme", loc.Params["subdomain"])
	}
}

func TestExternalAndInternalChangesConverge(t *testing.T) {
	r := New(nil, nil)

	r.Navigate("/dashboard")
	r.SetFromAddress("/login")

	if got := r.Location().Path; got != "/login" {
		t.Fatalf("path = %q, want /login", got)
	}

	r.Navigate("/dashboard/settings")
	if got := r.Location().Path; got != "/dashboard/settings" {
		t.Fatalf("path = %q, want /dashboard/settings", got)
	}
}

func TestSetFromAddressDefaultsToRoot(t *testing.T) {
	r := New(nil, nil)
	r.SetFromAddress("")
	if got := r.Location().Path; got != "/" {
		t.Fatalf("path = %q, want /", got)
	}
}

func TestExtractParams(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/loja/acme", "acme"},
		{"/loja/minha%20loja", "minha loja"},
		{"/loja/acme/qualquer", "acme"},
		{"/loja/", ""},
		{"/dashboard", ""},
		{"/", ""},
	}

	for _, tt := range tests {
		params := ExtractParams(tt.path)
		if got := params["subdomain"]; got != tt.want {
			t.Errorf("ExtractParams(%q)[subdomain] = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSubscribeReceivesLocation(t *testing.T) {
	r := New(nil, nil)

	var seen []string
	r.Subscribe(func(loc Location) {
		seen = append(seen, loc.Path)
	})

	r.Navigate("/login")
	r.SetFromAddress("/signup")

	if len(seen) != 2 || seen[0] != "/login" || seen[1] != "/signup" {
		t.Fatalf("observer saw %v, want [/login /signup]", seen)
	}
}
