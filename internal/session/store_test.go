package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/auth"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/models"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/router"
)

type fakeGateway struct {
	mu         sync.Mutex
	session    *auth.Session
	sessionErr error
	signOutErr error
	signedOut  bool
}

func (g *fakeGateway) CurrentSession(ctx context.Context) (*auth.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session, g.sessionErr
}

func (g *fakeGateway) SignOut(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.signedOut = true
	return g.signOutErr
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*models.User
	err      error
	// requests, quando não nil, entrega o controle de cada chamada ao teste:
	// GetProfile envia um canal de resposta e espera o resultado por ele.
	requests chan chan *models.User
}

func (f *fakeProfiles) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if f.requests != nil {
		reply := make(chan *models.User)
		f.requests <- reply
		return <-reply, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.profiles[userID], nil
}

type fakeCompanies struct {
	companies map[uuid.UUID]*models.Company
	err       error
}

func (f *fakeCompanies) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.companies[id], nil
}

func newFixture() (uuid.UUID, uuid.UUID, *fakeGateway, *fakeProfiles, *fakeCompanies) {
	userID := uuid.New()
	companyID := uuid.New()

	gateway := &fakeGateway{session: &auth.Session{UserID: userID}}
	profiles := &fakeProfiles{profiles: map[uuid.UUID]*models.User{
		userID: {ID: userID, Name: "Maria", Role: models.RoleAdmin, TenantID: &companyID},
	}}
	companies := &fakeCompanies{companies: map[uuid.UUID]*models.Company{
		companyID: {ID: companyID, Name: "Acme", Subdomain: "acme", Status: models.CompanyStatusActive},
	}}

	return userID, companyID, gateway, profiles, companies
}

func TestRefreshResolvesFullIdentity(t *testing.T) {
	_, companyID, gateway, profiles, companies := newFixture()
	store := NewStore(gateway, profiles, companies, nil, nil)

	if !store.Loading() {
		t.Fatal("store should start loading")
	}

	store.Refresh(context.Background())

	user, company := store.Identity()
	if user == nil || company == nil {
		t.Fatalf("identity = (%v, %v), want fully resolved pair", user, company)
	}
	if company.ID != companyID {
		t.Fatalf("company = %s, want %s", company.ID, companyID)
	}
	if store.Loading() {
		t.Fatal("loading should clear after first resolution")
	}
}

func TestAnyStageFailureCollapsesToSignedOut(t *testing.T) {
	ctx := context.Background()

	t.Run("session error", func(t *testing.T) {
		_, _, gateway, profiles, companies := newFixture()
		gateway.sessionErr = errors.New("auth backend down")
		store := NewStore(gateway, profiles, companies, nil, nil)
		store.Refresh(ctx)
		if user, company := store.Identity(); user != nil || company != nil {
			t.Fatalf("identity = (%v, %v), want (nil, nil)", user, company)
		}
	})

	t.Run("missing profile", func(t *testing.T) {
		_, _, gateway, profiles, companies := newFixture()
		profiles.profiles = map[uuid.UUID]*models.User{}
		store := NewStore(gateway, profiles, companies, nil, nil)
		store.Refresh(ctx)
		if user, _ := store.Identity(); user != nil {
			t.Fatalf("valid token without profile must read as signed out, got %v", user)
		}
	})

	t.Run("company error collapses user too", func(t *testing.T) {
		_, _, gateway, profiles, companies := newFixture()
		companies.err = errors.New("rls blocked")
		store := NewStore(gateway, profiles, companies, nil, nil)
		store.Refresh(ctx)
		if user, company := store.Identity(); user != nil || company != nil {
			t.Fatalf("partial identity exposed: (%v, %v)", user, company)
		}
	})
}

func TestSuperAdminHasNoCompany(t *testing.T) {
	userID, _, gateway, profiles, companies := newFixture()
	profiles.profiles[userID] = &models.User{ID: userID, Name: "Root", Role: models.RoleSuperAdmin}

	store := NewStore(gateway, profiles, companies, nil, nil)
	store.Refresh(context.Background())

	user, company := store.Identity()
	if user == nil || user.Role != models.RoleSuperAdmin {
		t.Fatalf("user = %v, want super admin", user)
	}
	if company != nil {
		t.Fatalf("company = %v, want nil", company)
	}
}

func TestStaleResolutionDoesNotOverwriteNewer(t *testing.T) {
	userID, _, gateway, profiles, companies := newFixture()
	profiles.requests = make(chan chan *models.User)

	store := NewStore(gateway, profiles, companies, nil, nil)
	ctx := context.Background()

	done := make(chan struct{}, 2)

	// Resolução antiga: iniciada primeiro, concluída por último.
	go func() {
		store.Refresh(ctx)
		done <- struct{}{}
	}()
	oldReply := <-profiles.requests

	// Resolução nova: iniciada depois, concluída primeiro.
	go func() {
		store.Refresh(ctx)
		done <- struct{}{}
	}()
	newReply := <-profiles.requests

	newReply <- &models.User{ID: userID, Name: "Segunda", Role: models.RoleSuperAdmin}
	<-done
	oldReply <- &models.User{ID: userID, Name: "Primeira", Role: models.RoleSuperAdmin}
	<-done

	user, _ := store.Identity()
	if user == nil || user.Name != "Segunda" {
		t.Fatalf("stale resolution overwrote newer one: user = %+v", user)
	}
}

func TestLogoutIsUnconditional(t *testing.T) {
	_, _, gateway, profiles, companies := newFixture()
	gateway.signOutErr = errors.New("network unreachable")

	rt := router.New(nil, nil)
	rt.Navigate("/dashboard")

	store := NewStore(gateway, profiles, companies, rt, nil)
	store.Refresh(context.Background())
	if user, _ := store.Identity(); user == nil {
		t.Fatal("fixture should resolve a user before logout")
	}

	store.Logout(context.Background())

	if user, company := store.Identity(); user != nil || company != nil {
		t.Fatalf("identity after logout = (%v, %v), want (nil, nil)", user, company)
	}
	if got := rt.Location().Path; got != "/" {
		t.Fatalf("path after logout = %q, want /", got)
	}
	if !gateway.signedOut {
		t.Fatal("remote sign-out should still be attempted")
	}
}

func TestRunReactsToAuthEvents(t *testing.T) {
	_, _, gateway, profiles, companies := newFixture()
	store := NewStore(gateway, profiles, companies, nil, nil)

	events := make(chan auth.Event)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loopDone := make(chan struct{})
	go func() {
		store.Run(ctx, events)
		close(loopDone)
	}()

	waitFor := func(cond func() bool) {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if cond() {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
		t.Fatal("condition not reached in time")
	}

	waitFor(func() bool { user, _ := store.Identity(); return user != nil })

	events <- auth.Event{Type: auth.EventSignedOut}
	waitFor(func() bool { user, _ := store.Identity(); return user == nil })

	events <- auth.Event{Type: auth.EventSignedIn}
	waitFor(func() bool { user, _ := store.Identity(); return user != nil })

	cancel()
	<-loopDone
}
