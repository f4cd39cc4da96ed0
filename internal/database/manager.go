package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/config"
)

// Manager guarda o pool compartilhado do banco. Todos os tenants vivem no
// mesmo database, isolados pela coluna tenant_id.
type Manager struct {
	pool   *pgxpool.Pool
	cfg    *config.Config
	logger *zap.Logger
	mu     sync.RWMutex
}

func NewManager(cfg *config.Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{cfg: cfg, logger: logger}
}

// InitPool inicializa o pool de conexões. Idempotente.
func (m *Manager) InitPool(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool != nil {
		return nil
	}

	poolConfig, err := pgxpool.ParseConfig(m.cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to parse db config: %w", err)
	}

	poolConfig.MaxConns = m.cfg.Database.MaxConns
	poolConfig.MinConns = m.cfg.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create db pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping db: %w", err)
	}

	m.pool = pool
	m.logger.Info("database pool initialized")
	return nil
}

// Pool devolve o pool compartilhado.
func (m *Manager) Pool() *pgxpool.Pool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pool
}

// EnsureSchema aplica o schema base. Seguro para rodar em todo boot.
func (m *Manager) EnsureSchema(ctx context.Context) error {
	pool := m.Pool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	if _, err := pool.Exec(ctx, baseSchema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	m.logger.Info("database schema ensured")
	return nil
}

// Close fecha o pool.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool != nil {
		m.pool.Close()
		m.pool = nil
		m.logger.Info("database pool closed")
	}
}

const baseSchema = `
	-- Empresas (tenants)
	CREATE TABLE IF NOT EXISTS companies (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(255) NOT NULL,
		subdomain VARCHAR(100) NOT NULL UNIQUE,
		status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		logo_url TEXT,
		hero_url TEXT,
		whatsapp VARCHAR(50),
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- Perfis de acesso (espelham as identidades de auth_users)
	CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'COLLAB',
		tenant_id UUID REFERENCES companies(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- Produtos por tenant
	CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		tenant_id UUID NOT NULL REFERENCES companies(id),
		name VARCHAR(255) NOT NULL,
		price DECIMAL(10,2) NOT NULL DEFAULT 0,
		description TEXT,
		image_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_products_tenant ON products(tenant_id);
	CREATE INDEX IF NOT EXISTS idx_companies_subdomain ON companies(subdomain);

	-- Identidades de login (preocupação privada do colaborador de auth)
	CREATE TABLE IF NOT EXISTS auth_users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`
