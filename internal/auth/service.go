package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/cache"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/config"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoSession          = errors.New("no active session")
)

// EventType identifica uma transição de estado de autenticação.
type EventType string

const (
	EventSignedIn  EventType = "SIGNED_IN"
	EventSignedOut EventType = "SIGNED_OUT"
)

// Event é uma transição emitida pelo fluxo de eventos de autenticação.
type Event struct {
	Type   EventType
	UserID uuid.UUID
}

// Session é a identidade opaca de um login ativo.
type Session struct {
	Token     string
	SessionID uuid.UUID
	UserID    uuid.UUID
	ExpiresAt time.Time
}

// Service é o colaborador de autenticação: credenciais em Postgres, sessões
// revogáveis em Redis e um fluxo de eventos de transição de estado.
type Service struct {
	pool     *pgxpool.Pool
	sessions *cache.Client
	cfg      *config.AuthConfig
	logger   *zap.Logger

	mu   sync.Mutex
	subs []chan Event
}

func NewService(pool *pgxpool.Pool, sessions *cache.Client, cfg *config.AuthConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		pool:     pool,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

// NormalizeEmail normaliza um email (lowercase e trim)
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp cria a identidade e abre uma sessão para ela.
func (s *Service) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)

	hash, err := HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var userID uuid.UUID
	err = s.pool.QueryRow(ctx,
		`INSERT INTO auth_users (email, password_hash) VALUES ($1, $2) RETURNING id`,
		email, hash,
	).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	return s.openSession(ctx, userID)
}

// SignIn valida as credenciais e abre uma sessão.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)

	var userID uuid.UUID
	var hash string
	err := s.pool.QueryRow(ctx,
		`SELECT id, password_hash FROM auth_users WHERE email = $1`,
		email,
	).Scan(&userID, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up identity: %w", err)
	}

	if !CheckPasswordHash(password, hash) {
		return nil, ErrInvalidCredentials
	}

	return s.openSession(ctx, userID)
}

func (s *Service) openSession(ctx context.Context, userID uuid.UUID) (*Session, error) {
	sessionID := uuid.New()

	token, expiresAt, err := GenerateToken(userID, sessionID, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	ttl := time.Until(expiresAt)
	if err := s.sessions.SetSession(ctx, sessionID.String(), userID.String(), ttl); err != nil {
		return nil, fmt.Errorf("failed to register session: %w", err)
	}

	s.emit(Event{Type: EventSignedIn, UserID: userID})

	return &Session{
		Token:     token,
		SessionID: sessionID,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}, nil
}

// SessionFromToken valida o token e confere se a sessão ainda não foi
// revogada. Sessão ausente ou expirada vira ErrNoSession.
func (s *Service) SessionFromToken(ctx context.Context, token string) (*Session, error) {
	claims, err := ValidateToken(token, s.cfg)
	if err != nil {
		return nil, ErrNoSession
	}

	ownerID, err := s.sessions.GetSession(ctx, claims.SessionID.String())
	if err != nil {
		if errors.Is(err, cache.Nil) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if ownerID != claims.UserID.String() {
		return nil, ErrNoSession
	}

	return &Session{
		Token:     token,
		SessionID: claims.SessionID,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// SignOut revoga a sessão do token. A revogação local do chamador não deve
// depender do sucesso desta chamada.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := ValidateToken(token, s.cfg)
	if err != nil {
		return ErrNoSession
	}

	err = s.sessions.DeleteSession(ctx, claims.SessionID.String())
	s.emit(Event{Type: EventSignedOut, UserID: claims.UserID})
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// Subscribe devolve um canal que recebe as transições de estado de
// autenticação. O canal é bufferizado; eventos são descartados se o
// assinante não consumir.
func (s *Service) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Service) emit(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Warn("auth event dropped, slow subscriber",
				zap.String("type", string(ev.Type)))
		}
	}
}
