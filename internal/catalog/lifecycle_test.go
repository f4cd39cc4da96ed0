package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/ai"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/models"
)

type memoryStore struct {
	mu        sync.Mutex
	products  map[uuid.UUID]models.Product
	denyAll   bool
	insertErr error
	updateErr error
	deleteErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{products: map[uuid.UUID]models.Product{}}
}

func (s *memoryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *memoryStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Product
	for _, p := range s.products {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memoryStore) Insert(ctx context.Context, product *models.Product) (*models.Product, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *product
	p.ID = uuid.New()
	s.products[p.ID] = p
	return &p, nil
}

func (s *memoryStore) Update(ctx context.Context, product *models.Product) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[product.ID]; !ok {
		return errors.New("product not found")
	}
	s.products[product.ID] = *product
	return nil
}

func (s *memoryStore) DeleteReturningCount(ctx context.Context, id uuid.UUID) (int64, error) {
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.denyAll {
		// Transporte aceita, política ignora: zero linhas afetadas.
		return 0, nil
	}
	if _, ok := s.products[id]; !ok {
		return 0, nil
	}
	delete(s.products, id)
	return 1, nil
}

type fakeBlobs struct {
	uploads int
	err     error
}

func (b *fakeBlobs) UploadProductImage(ctx context.Context, tenantID uuid.UUID, data []byte, mimeType string) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	b.uploads++
	return fmt.Sprintf("https://blobs.test/%s/foto_%d.jpg", tenantID, b.uploads), nil
}

// scriptedAnalyzer devolve resultados sob demanda; com gate, cada chamada
// espera o teste liberar.
type scriptedAnalyzer struct {
	mu      sync.Mutex
	results []ai.Result
	gate    chan struct{}
}

func (a *scriptedAnalyzer) AnalyzeProductPhoto(ctx context.Context, data []byte, mimeType string) ai.Result {
	if a.gate != nil {
		<-a.gate
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.results) == 0 {
		return ai.Result{Kind: ai.KindFailed, Err: errors.New("no scripted result")}
	}
	r := a.results[0]
	a.results = a.results[1:]
	return r
}

func newManager(store *memoryStore, blobs *fakeBlobs, analyzer ai.Analyzer) *Manager {
	if analyzer == nil {
		analyzer = &scriptedAnalyzer{}
	}
	return NewManager(store, blobs, analyzer, nil)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"9.9", 9.9, false},
		{"149,90", 149.90, false},
		{" 10 ", 10, false},
		{"0", 0, false},
		{"", 0, true},
		{"abc", 0, true},
		{"-5", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePrice(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidPrice) {
				t.Errorf("ParsePrice(%q) err = %v, want ErrInvalidPrice", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParsePrice(%q) = (%v, %v), want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestCreateWithAISuggestion(t *testing.T) {
	store := newMemoryStore()
	blobs := &fakeBlobs{}
	analyzer := &scriptedAnalyzer{results: []ai.Result{{
		Kind:       ai.KindOK,
		Suggestion: ai.Suggestion{Name: "Vestido Floral", Description: "Leve e fresco", SuggestedPrice: 89.9},
	}}}
	mgr := newManager(store, blobs, analyzer)
	tenantID := uuid.New()

	session := mgr.NewSession(tenantID)
	result := session.AttachImage(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")

	if result.Kind != ai.KindOK {
		t.Fatalf("analysis kind = %v", result.Kind)
	}
	if session.State() != StateFormReady {
		t.Fatalf("state = %v, want form-ready", session.State())
	}
	form := session.Form()
	if form.Name != "Vestido Floral" || form.Price != "89.9" {
		t.Fatalf("form not prefilled: %+v", form)
	}

	saved, err := session.Save(context.Background())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if saved.TenantID != tenantID || saved.ImageURL == "" {
		t.Fatalf("saved = %+v", saved)
	}
	if session.State() != StateSaved {
		t.Fatalf("state = %v, want saved", session.State())
	}
}

func TestAIFailureNeverBlocksManualEntry(t *testing.T) {
	store := newMemoryStore()
	analyzer := &scriptedAnalyzer{results: []ai.Result{{Kind: ai.KindFailed, Err: errors.New("ai outage")}}}
	mgr := newManager(store, &fakeBlobs{}, analyzer)

	session := mgr.NewSession(uuid.New())
	session.SetForm(Form{Name: "Preenchido à mão", Price: "10", Description: "manual"})

	result := session.AttachImage(context.Background(), []byte{1}, "image/jpeg")
	if result.Kind != ai.KindFailed {
		t.Fatalf("kind = %v", result.Kind)
	}
	if session.State() != StateFormReady {
		t.Fatalf("state = %v, want form-ready after AI failure", session.State())
	}
	if form := session.Form(); form.Name != "Preenchido à mão" {
		t.Fatalf("manual fields lost: %+v", form)
	}

	if _, err := session.Save(context.Background()); err != nil {
		t.Fatalf("manual save blocked by AI outage: %v", err)
	}
}

type funcAnalyzer func(ctx context.Context, data []byte, mimeType string) ai.Result

func (f funcAnalyzer) AnalyzeProductPhoto(ctx context.Context, data []byte, mimeType string) ai.Result {
	return f(ctx, data, mimeType)
}

func TestSupersededAnalysisIsDiscarded(t *testing.T) {
	store := newMemoryStore()
	entered := make(chan struct{})
	release := make(chan struct{})

	analyzer := funcAnalyzer(func(ctx context.Context, data []byte, mimeType string) ai.Result {
		if data[0] == 1 {
			close(entered)
			<-release
			return ai.Result{Kind: ai.KindOK, Suggestion: ai.Suggestion{Name: "Primeira Foto", SuggestedPrice: 1}}
		}
		return ai.Result{Kind: ai.KindOK, Suggestion: ai.Suggestion{Name: "Segunda Foto", SuggestedPrice: 2}}
	})

	mgr := newManager(store, &fakeBlobs{}, analyzer)
	session := mgr.NewSession(uuid.New())

	firstDone := make(chan struct{})
	go func() {
		session.AttachImage(context.Background(), []byte{1}, "image/jpeg")
		close(firstDone)
	}()
	<-entered

	// Usuário troca a imagem enquanto a primeira análise ainda está em voo.
	session.AttachImage(context.Background(), []byte{2}, "image/jpeg")

	// A análise superada conclui depois — e precisa ser descartada.
	close(release)
	<-firstDone

	if form := session.Form(); form.Name != "Segunda Foto" {
		t.Fatalf("superseded analysis applied over current image: %+v", form)
	}
	if session.State() != StateFormReady {
		t.Fatalf("state = %v, want form-ready", session.State())
	}
}

func TestSaveFailureLeavesFormOpenForRetry(t *testing.T) {
	store := newMemoryStore()
	store.insertErr = errors.New("permission denied for table products")
	mgr := newManager(store, &fakeBlobs{}, nil)

	session := mgr.NewSession(uuid.New())
	session.SetForm(Form{Name: "X", Price: "9.9"})

	_, err := session.Save(context.Background())
	if err == nil || err.Error() != "permission denied for table products" {
		t.Fatalf("raw backend message not surfaced: %v", err)
	}
	if session.State() != StateSaveFailed {
		t.Fatalf("state = %v, want save-failed", session.State())
	}

	// Retry depois do backend voltar.
	store.insertErr = nil
	if _, err := session.Save(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
}

func TestSaveMalformedPriceIsValidation(t *testing.T) {
	mgr := newManager(newMemoryStore(), &fakeBlobs{}, nil)
	session := mgr.NewSession(uuid.New())
	session.SetForm(Form{Name: "X", Price: "caro"})

	if _, err := session.Save(context.Background()); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("err = %v, want ErrInvalidPrice", err)
	}
}

func TestEditRetainsPreviousImageWithoutNewUpload(t *testing.T) {
	store := newMemoryStore()
	blobs := &fakeBlobs{}
	mgr := newManager(store, blobs, nil)
	tenantID := uuid.New()

	existing, _ := store.Insert(context.Background(), &models.Product{
		TenantID: tenantID, Name: "Original", Price: 50, ImageURL: "https://blobs.test/antiga.jpg",
	})

	session := mgr.EditSession(existing)
	form := session.Form()
	form.Price = "59,90"
	session.SetForm(form)

	saved, err := session.Save(context.Background())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if saved.ImageURL != "https://blobs.test/antiga.jpg" {
		t.Fatalf("previous image replaced: %q", saved.ImageURL)
	}
	if blobs.uploads != 0 {
		t.Fatalf("unexpected upload")
	}
	if saved.Price != 59.90 {
		t.Fatalf("price = %v", saved.Price)
	}
}

func TestDeletePolicyBlockedKeepsProductListed(t *testing.T) {
	store := newMemoryStore()
	mgr := newManager(store, &fakeBlobs{}, nil)
	tenantID := uuid.New()

	product, _ := store.Insert(context.Background(), &models.Product{TenantID: tenantID, Name: "Travado", Price: 10})
	store.denyAll = true

	err := mgr.Delete(context.Background(), product.ID)
	if !errors.Is(err, ErrPolicyBlocked) {
		t.Fatalf("err = %v, want ErrPolicyBlocked", err)
	}

	listed, _ := mgr.List(context.Background(), tenantID)
	if len(listed) != 1 {
		t.Fatalf("product vanished from listing: %v", listed)
	}
}

func TestDeleteHardErrorIsNotPolicyBlocked(t *testing.T) {
	store := newMemoryStore()
	store.deleteErr = errors.New("connection reset")
	mgr := newManager(store, &fakeBlobs{}, nil)

	err := mgr.Delete(context.Background(), uuid.New())
	if err == nil || errors.Is(err, ErrPolicyBlocked) {
		t.Fatalf("err = %v, want hard error distinct from policy block", err)
	}
}

func TestRecycleOverwritesInPlace(t *testing.T) {
	store := newMemoryStore()
	blobs := &fakeBlobs{}
	analyzer := &scriptedAnalyzer{results: []ai.Result{{
		Kind:       ai.KindOK,
		Suggestion: ai.Suggestion{Name: "X", SuggestedPrice: 9.9, Description: "novo"},
	}}}
	mgr := newManager(store, blobs, analyzer)
	tenantID := uuid.New()

	blocked, _ := store.Insert(context.Background(), &models.Product{
		TenantID: tenantID, Name: "Antigo", Price: 50, Description: "velho",
	})
	store.denyAll = true

	if err := mgr.Delete(context.Background(), blocked.ID); !errors.Is(err, ErrPolicyBlocked) {
		t.Fatalf("fixture: delete should be policy blocked, got %v", err)
	}

	session := mgr.RecycleSession(blocked)
	if form := session.Form(); form.Name != "" || form.Price != "" || form.Description != "" {
		t.Fatalf("recycle must clear display fields, got %+v", form)
	}

	session.AttachImage(context.Background(), []byte{0xFF}, "image/jpeg")
	saved, err := session.Save(context.Background())
	if err != nil {
		t.Fatalf("recycle save failed: %v", err)
	}

	if saved.ID != blocked.ID {
		t.Fatalf("recycle created a new id: %s != %s", saved.ID, blocked.ID)
	}
	if saved.TenantID != tenantID {
		t.Fatalf("tenant changed on recycle")
	}
	if saved.Name != "X" || saved.Price != 9.9 {
		t.Fatalf("row not overwritten: %+v", saved)
	}

	listed, _ := mgr.List(context.Background(), tenantID)
	if len(listed) != 1 || listed[0].ID != blocked.ID {
		t.Fatalf("recycle left an orphan: %v", listed)
	}
}
