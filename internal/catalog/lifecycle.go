package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/ai"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/models"
)

// State é o estágio de uma sessão de edição de produto.
type State string

const (
	StateIdle       State = "idle"
	StateCapturing  State = "capturing-image"
	StateAnalyzing  State = "ai-analyzing"
	StateFormReady  State = "form-ready"
	StateSaving     State = "saving"
	StateSaved      State = "saved"
	StateSaveFailed State = "save-failed"
)

var (
	// ErrPolicyBlocked: o backend aceitou o delete mas nenhuma linha foi
	// afetada — a política de acesso ignorou o pedido. Distinto de erro
	// duro; a recuperação sancionada é a reciclagem.
	ErrPolicyBlocked = errors.New("delete ignored by access policy")

	// ErrInvalidPrice: o preço informado não é um valor monetário válido.
	ErrInvalidPrice = errors.New("invalid price")
)

// ProductStore é o colaborador de persistência do catálogo. Delete devolve a
// contagem de linhas afetadas: um sucesso de transporte com zero linhas é
// observável e tratado como bloqueio de política, não como sucesso.
type ProductStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Product, error)
	Insert(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	DeleteReturningCount(ctx context.Context, id uuid.UUID) (int64, error)
}

// BlobStore grava a foto de um produto e devolve a URL pública. O caminho é
// prefixado pelo tenant para garantir isolamento.
type BlobStore interface {
	UploadProductImage(ctx context.Context, tenantID uuid.UUID, data []byte, mimeType string) (string, error)
}

// Manager orquestra o ciclo de vida de produtos de um catálogo: criação e
// edição assistidas por IA, persistência e o protocolo de recuperação quando
// a exclusão é bloqueada pelo backend.
type Manager struct {
	products ProductStore
	blobs    BlobStore
	analyzer ai.Analyzer
	logger   *zap.Logger
}

func NewManager(products ProductStore, blobs BlobStore, analyzer ai.Analyzer, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		products: products,
		blobs:    blobs,
		analyzer: analyzer,
		logger:   logger,
	}
}

// Form são os campos editáveis de um produto. Price fica em texto até o
// save: a conversão para número é uma validação, não uma entrada.
type Form struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

// ParsePrice converte o texto do preço em valor numérico. Aceita vírgula
// decimal; rejeita valores vazios, não numéricos e negativos.
func ParsePrice(text string) (float64, error) {
	s := strings.TrimSpace(strings.ReplaceAll(text, ",", "."))
	if s == "" {
		return 0, ErrInvalidPrice
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value < 0 {
		return 0, ErrInvalidPrice
	}
	return value, nil
}

// Session é uma sessão de edição de produto. A UI garante no máximo uma
// sessão aberta por vez; dentro dela, respostas de análise superadas por uma
// troca de imagem são descartadas via sequência.
type Session struct {
	mgr *Manager

	mu          sync.Mutex
	state       State
	tenantID    uuid.UUID
	target      *models.Product
	form        Form
	image       []byte
	imageMime   string
	analysisSeq uint64
	recycled    bool
}

// NewSession abre uma sessão de criação para um tenant.
func (m *Manager) NewSession(tenantID uuid.UUID) *Session {
	return &Session{
		mgr:      m,
		state:    StateIdle,
		tenantID: tenantID,
	}
}

// EditSession abre uma sessão de edição sobre um produto existente, com o
// formulário pré-preenchido.
func (m *Manager) EditSession(product *models.Product) *Session {
	return &Session{
		mgr:      m,
		state:    StateFormReady,
		tenantID: product.TenantID,
		target:   product,
		form: Form{
			Name:        product.Name,
			Price:       strconv.FormatFloat(product.Price, 'f', -1, 64),
			Description: product.Description,
		},
	}
}

// RecycleSession reaproveita um produto que não pôde ser excluído: os campos
// exibidos são limpos para forçar um novo cadastro assistido, mas a
// identidade (id e tenant) é preservada — o save sobrescreve a linha
// existente em vez de criar uma órfã.
func (m *Manager) RecycleSession(product *models.Product) *Session {
	return &Session{
		mgr:      m,
		state:    StateIdle,
		tenantID: product.TenantID,
		target:   product,
		recycled: true,
	}
}

// State devolve o estágio atual da sessão.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Form devolve uma cópia do formulário atual.
func (s *Session) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// SetForm substitui os campos editados manualmente.
func (s *Session) SetForm(form Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = form
	if s.state == StateIdle {
		s.state = StateFormReady
	}
}

// SetImage registra a imagem sem disparar análise. Supersede qualquer
// análise em voo: a resposta atrasada será descartada.
func (s *Session) SetImage(data []byte, mimeType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.image = data
	s.imageMime = mimeType
	s.analysisSeq++
	if s.state == StateIdle {
		s.state = StateFormReady
	}
}

// AttachImage registra a imagem selecionada e dispara a análise assistida.
// A falha da análise é não fatal: o formulário mantém o que já estava
// preenchido e a sessão volta a form-ready. Se outra imagem substituir esta
// durante a análise, a resposta superada é descartada.
func (s *Session) AttachImage(ctx context.Context, data []byte, mimeType string) ai.Result {
	s.mu.Lock()
	s.state = StateCapturing
	s.image = data
	s.imageMime = mimeType
	s.analysisSeq++
	seq := s.analysisSeq
	s.state = StateAnalyzing
	s.mu.Unlock()

	result := s.mgr.analyzer.AnalyzeProductPhoto(ctx, data, mimeType)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.analysisSeq {
		// Imagem trocada no meio do voo: não aplica nada.
		return result
	}

	s.state = StateFormReady

	if result.Kind == ai.KindOK {
		suggestion := result.Suggestion
		s.form = Form{
			Name:        suggestion.Name,
			Price:       strconv.FormatFloat(suggestion.SuggestedPrice, 'f', -1, 64),
			Description: suggestion.Description,
		}
	} else if result.Err != nil {
		s.mgr.logger.Info("image analysis unavailable, keeping manual entry",
			zap.Error(result.Err))
	}

	return result
}

// Save persiste a sessão. Com imagem nova, o upload acontece primeiro e a
// URL devolvida substitui a anterior; sem imagem nova, a URL prévia do alvo
// é mantida. Falha de save deixa o formulário aberto para retry e devolve a
// mensagem crua do backend.
func (s *Session) Save(ctx context.Context) (*models.Product, error) {
	s.mu.Lock()
	form := s.form
	image := s.image
	imageMime := s.imageMime
	target := s.target
	tenantID := s.tenantID
	s.state = StateSaving
	s.mu.Unlock()

	fail := func(err error) (*models.Product, error) {
		s.mu.Lock()
		s.state = StateSaveFailed
		s.mu.Unlock()
		return nil, err
	}

	price, err := ParsePrice(form.Price)
	if err != nil {
		return fail(err)
	}

	imageURL := ""
	if target != nil {
		imageURL = target.ImageURL
	}
	if len(image) > 0 {
		url, err := s.mgr.blobs.UploadProductImage(ctx, tenantID, image, imageMime)
		if err != nil {
			return fail(fmt.Errorf("image upload failed: %w", err))
		}
		imageURL = url
	}

	product := &models.Product{
		TenantID:    tenantID,
		Name:        form.Name,
		Price:       price,
		Description: form.Description,
		ImageURL:    imageURL,
	}

	if target != nil {
		product.ID = target.ID
		product.CreatedAt = target.CreatedAt
		if err := s.mgr.products.Update(ctx, product); err != nil {
			return fail(err)
		}
	} else {
		saved, err := s.mgr.products.Insert(ctx, product)
		if err != nil {
			return fail(err)
		}
		product = saved
	}

	s.mu.Lock()
	s.state = StateSaved
	s.mu.Unlock()
	return product, nil
}

// List devolve o catálogo de um tenant.
func (m *Manager) List(ctx context.Context, tenantID uuid.UUID) ([]models.Product, error) {
	return m.products.ListByTenant(ctx, tenantID)
}

// Get devolve um produto pelo id.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return m.products.GetByID(ctx, id)
}

// Delete tenta excluir o produto e verifica o efeito: transporte ok com zero
// linhas afetadas é ErrPolicyBlocked — o produto continua listado e a única
// recuperação sancionada é a reciclagem.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	count, err := m.products.DeleteReturningCount(ctx, id)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	if count == 0 {
		m.logger.Warn("delete silently ignored by backend policy",
			zap.String("product_id", id.String()))
		return ErrPolicyBlocked
	}
	return nil
}
