package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/auth"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/models"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/router"
)

// AuthGateway é a fatia do colaborador de autenticação que o store consome:
// a sessão corrente (nil quando deslogado) e o sign-out.
type AuthGateway interface {
	CurrentSession(ctx context.Context) (*auth.Session, error)
	SignOut(ctx context.Context) error
}

// ProfileStore resolve o perfil de uma identidade. (nil, nil) significa
// perfil inexistente, não erro.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// CompanyStore resolve a empresa administrada por um perfil.
type CompanyStore interface {
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
}

// Resolver executa a cadeia sessão → perfil → empresa. Qualquer falha em
// qualquer estágio colapsa o resultado para (nil, nil): identidades parciais
// nunca são expostas ao resto do sistema.
type Resolver struct {
	Profiles  ProfileStore
	Companies CompanyStore
	Logger    *zap.Logger
}

// ResolveUser resolve perfil e empresa de uma identidade já conhecida.
func (r *Resolver) ResolveUser(ctx context.Context, userID uuid.UUID) (*models.User, *models.Company) {
	profile, err := r.Profiles.GetProfile(ctx, userID)
	if err != nil || profile == nil {
		// Sessão sem perfil resolúvel é tratada como deslogado, mesmo que o
		// colaborador de auth ainda reporte um token válido.
		if err != nil && r.Logger != nil {
			r.Logger.Warn("profile resolution failed", zap.Error(err))
		}
		return nil, nil
	}

	if profile.TenantID == nil {
		return profile, nil
	}

	company, err := r.Companies.GetCompany(ctx, *profile.TenantID)
	if err != nil || company == nil {
		if err != nil && r.Logger != nil {
			r.Logger.Warn("company resolution failed", zap.Error(err))
		}
		return nil, nil
	}

	return profile, company
}

// Store guarda a identidade corrente (usuário + empresa) do ciclo de vida da
// sessão. Resoluções concorrentes são ordenadas por uma sequência monotônica:
// uma conclusão atrasada de resolução antiga nunca sobrescreve uma mais nova.
type Store struct {
	resolver Resolver
	gateway  AuthGateway
	router   *router.Router
	logger   *zap.Logger

	mu        sync.Mutex
	user      *models.User
	company   *models.Company
	loading   bool
	nextSeq   uint64
	committed uint64
}

func NewStore(gateway AuthGateway, profiles ProfileStore, companies CompanyStore, rt *router.Router, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		resolver: Resolver{Profiles: profiles, Companies: companies, Logger: logger},
		gateway:  gateway,
		router:   rt,
		logger:   logger,
		loading:  true,
	}
}

// Identity devolve o par (usuário, empresa) corrente.
func (s *Store) Identity() (*models.User, *models.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.company
}

// Loading informa se a resolução inicial de identidade ainda está em voo.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Refresh resolve a identidade corrente. Idempotente e seguro para chamadas
// concorrentes: cada chamada recebe um número de sequência na iniciação e só
// comita se nenhuma resolução mais nova tiver comitado antes.
func (s *Store) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.nextSeq++
	seq := s.nextSeq
	s.mu.Unlock()

	user, company := s.resolveOnce(ctx)
	s.commit(seq, user, company)
}

func (s *Store) resolveOnce(ctx context.Context) (*models.User, *models.Company) {
	sess, err := s.gateway.CurrentSession(ctx)
	if err != nil || sess == nil {
		if err != nil {
			s.logger.Warn("session retrieval failed", zap.Error(err))
		}
		return nil, nil
	}
	return s.resolver.ResolveUser(ctx, sess.UserID)
}

func (s *Store) commit(seq uint64, user *models.User, company *models.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
	if seq <= s.committed {
		// Conclusão fora de ordem de uma resolução superada.
		return
	}
	s.committed = seq
	s.user = user
	s.company = company
}

// Logout encerra a sessão. A limpeza local e a navegação para a raiz
// acontecem mesmo quando o sign-out remoto falha: do ponto de vista do
// usuário o logout é incondicional.
func (s *Store) Logout(ctx context.Context) {
	if err := s.gateway.SignOut(ctx); err != nil {
		s.logger.Warn("remote sign-out failed, clearing local state anyway", zap.Error(err))
	}

	s.mu.Lock()
	s.nextSeq++
	s.committed = s.nextSeq
	s.user = nil
	s.company = nil
	s.loading = false
	s.mu.Unlock()

	if s.router != nil {
		s.router.Navigate("/")
	}
}

// Run consome o fluxo de transições de autenticação até o contexto encerrar:
// sign-out limpa a identidade, qualquer outra transição dispara um Refresh.
func (s *Store) Run(ctx context.Context, events <-chan auth.Event) {
	s.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Type == auth.EventSignedOut {
				s.mu.Lock()
				s.nextSeq++
				s.committed = s.nextSeq
				s.user = nil
				s.company = nil
				s.mu.Unlock()
				continue
			}
			s.Refresh(ctx)
		}
	}
}
