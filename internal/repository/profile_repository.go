package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/models"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// GetProfile busca o perfil de acesso de uma identidade. Devolve nil sem
// erro quando a identidade ainda não tem perfil.
func (r *ProfileRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user := &models.User{}

	query := `
		SELECT id, name, email, role, tenant_id, created_at
		FROM profiles
		WHERE id = $1
	`

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.TenantID,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return user, nil
}

// CreateProfile insere um perfil novo com o id da identidade de login.
func (r *ProfileRepository) CreateProfile(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO profiles (id, name, email, role, tenant_id)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.pool.Exec(ctx, query, user.ID, user.Name, user.Email, user.Role, user.TenantID); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// UpsertProfile grava ou promove um perfil. Usado pelo setup do super admin,
// que precisa funcionar mesmo quando o perfil já existe com outro papel.
func (r *ProfileRepository) UpsertProfile(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO profiles (id, name, email, role, tenant_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, email = EXCLUDED.email, role = EXCLUDED.role, tenant_id = EXCLUDED.tenant_id
	`

	if _, err := r.pool.Exec(ctx, query, user.ID, user.Name, user.Email, user.Role, user.TenantID); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return nil
}

// ListByTenant devolve os perfis vinculados a uma empresa.
func (r *ProfileRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.User, error) {
	query := `
		SELECT id, name, email, role, tenant_id, created_at
		FROM profiles
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.TenantID, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}

	if users == nil {
		users = []models.User{}
	}
	return users, nil
}
