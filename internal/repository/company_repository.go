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

type CompanyRepository struct {
	pool *pgxpool.Pool
}

func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

// GetCompany busca uma empresa por id. Devolve nil sem erro quando não
// existe.
func (r *CompanyRepository) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company := &models.Company{}

	query := `
		SELECT id, name, subdomain, status, COALESCE(logo_url, ''), COALESCE(hero_url, ''), COALESCE(whatsapp, ''), created_at
		FROM companies
		WHERE id = $1
	`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&company.Subdomain,
		&company.Status,
		&company.LogoURL,
		&company.HeroURL,
		&company.Whatsapp,
		&company.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	return company, nil
}

// GetCompanyBySubdomain busca por subdomínio, sem distinção de caixa.
// Devolve nil sem erro quando o subdomínio está livre.
func (r *CompanyRepository) GetCompanyBySubdomain(ctx context.Context, subdomain string) (*models.Company, error) {
	company := &models.Company{}

	query := `
		SELECT id, name, subdomain, status, COALESCE(logo_url, ''), COALESCE(hero_url, ''), COALESCE(whatsapp, ''), created_at
		FROM companies
		WHERE LOWER(subdomain) = LOWER($1)
	`

	err := r.pool.QueryRow(ctx, query, subdomain).Scan(
		&company.ID,
		&company.Name,
		&company.Subdomain,
		&company.Status,
		&company.LogoURL,
		&company.HeroURL,
		&company.Whatsapp,
		&company.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company by subdomain: %w", err)
	}

	return company, nil
}

// List devolve todas as empresas, das mais novas para as mais antigas.
func (r *CompanyRepository) List(ctx context.Context) ([]models.Company, error) {
	query := `
		SELECT id, name, subdomain, status, COALESCE(logo_url, ''), COALESCE(hero_url, ''), COALESCE(whatsapp, ''), created_at
		FROM companies
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Subdomain, &c.Status, &c.LogoURL, &c.HeroURL, &c.Whatsapp, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating companies: %w", err)
	}

	if companies == nil {
		companies = []models.Company{}
	}
	return companies, nil
}

// CreateCompany insere uma empresa nova e devolve a linha criada.
func (r *CompanyRepository) CreateCompany(ctx context.Context, name, subdomain string, status models.CompanyStatus) (*models.Company, error) {
	company := &models.Company{}

	query := `
		INSERT INTO companies (name, subdomain, status)
		VALUES ($1, $2, $3)
		RETURNING id, name, subdomain, status, COALESCE(logo_url, ''), COALESCE(hero_url, ''), COALESCE(whatsapp, ''), created_at
	`

	err := r.pool.QueryRow(ctx, query, name, subdomain, status).Scan(
		&company.ID,
		&company.Name,
		&company.Subdomain,
		&company.Status,
		&company.LogoURL,
		&company.HeroURL,
		&company.Whatsapp,
		&company.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	return company, nil
}

// Update grava os campos editáveis da vitrine.
func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	query := `
		UPDATE companies
		SET name = $2, whatsapp = $3, logo_url = $4, hero_url = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, company.ID, company.Name, company.Whatsapp, company.LogoURL, company.HeroURL)
	if err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("company %s not found", company.ID)
	}

	return nil
}

// UpdateStatus muda o status de uma empresa (operação de super admin).
func (r *CompanyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CompanyStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE companies SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update company status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("company %s not found", id)
	}

	return nil
}
