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

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// ListByTenant devolve os produtos de um tenant, dos mais novos para os
// mais antigos. Leitura pública: alimenta a vitrine.
func (r *ProductRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Product, error) {
	query := `
		SELECT id, tenant_id, name, price, COALESCE(description, ''), COALESCE(image_url, ''), created_at
		FROM products
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name, &p.Price, &p.Description, &p.ImageURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// Scoped devolve uma visão do repositório restrita a um tenant. Toda
// escrita e todo delete carregam o filtro de tenant: um pedido contra uma
// linha de outro tenant afeta zero linhas em vez de falhar.
func (r *ProductRepository) Scoped(tenantID uuid.UUID) *TenantProducts {
	return &TenantProducts{pool: r.pool, tenantID: tenantID}
}

// TenantProducts é o repositório de produtos visto de dentro de um tenant.
type TenantProducts struct {
	pool     *pgxpool.Pool
	tenantID uuid.UUID
}

func (r *TenantProducts) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product := &models.Product{}

	query := `
		SELECT id, tenant_id, name, price, COALESCE(description, ''), COALESCE(image_url, ''), created_at
		FROM products
		WHERE id = $1 AND tenant_id = $2
	`

	err := r.pool.QueryRow(ctx, query, id, r.tenantID).Scan(
		&product.ID,
		&product.TenantID,
		&product.Name,
		&product.Price,
		&product.Description,
		&product.ImageURL,
		&product.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

func (r *TenantProducts) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Product, error) {
	return (&ProductRepository{pool: r.pool}).ListByTenant(ctx, tenantID)
}

func (r *TenantProducts) Insert(ctx context.Context, product *models.Product) (*models.Product, error) {
	created := &models.Product{}

	query := `
		INSERT INTO products (tenant_id, name, price, description, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, tenant_id, name, price, COALESCE(description, ''), COALESCE(image_url, ''), created_at
	`

	err := r.pool.QueryRow(ctx, query, r.tenantID, product.Name, product.Price, product.Description, product.ImageURL).Scan(
		&created.ID,
		&created.TenantID,
		&created.Name,
		&created.Price,
		&created.Description,
		&created.ImageURL,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	return created, nil
}

func (r *TenantProducts) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $3, price = $4, description = $5, image_url = $6
		WHERE id = $1 AND tenant_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, product.ID, r.tenantID, product.Name, product.Price, product.Description, product.ImageURL)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s not found for tenant", product.ID)
	}

	return nil
}

// DeleteReturningCount executa o delete e devolve quantas linhas sumiram.
// Zero linhas sem erro significa que o filtro de tenant engoliu o pedido;
// quem chama decide o que isso significa.
func (r *TenantProducts) DeleteReturningCount(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1 AND tenant_id = $2`, id, r.tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete product: %w", err)
	}

	return tag.RowsAffected(), nil
}
