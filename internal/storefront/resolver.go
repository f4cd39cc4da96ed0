package storefront

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/cache"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/models"
)

// ErrStoreNotFound é o estado terminal da vitrine: subdomínio desconhecido
// ou a própria consulta falhou. Não há retry automático.
var ErrStoreNotFound = errors.New("store not found")

// CompanyDirectory resolve uma empresa pelo subdomínio público.
// (nil, nil) significa subdomínio inexistente.
type CompanyDirectory interface {
	GetCompanyBySubdomain(ctx context.Context, subdomain string) (*models.Company, error)
}

// ProductLister lista o catálogo de uma empresa.
type ProductLister interface {
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Product, error)
}

// Catalog é o resultado de uma resolução de vitrine. Quando a empresa existe
// mas o catálogo não pôde ser carregado, CatalogUnavailable marca a condição
// sem esconder a identidade da empresa.
type Catalog struct {
	Company            *models.Company  `json:"company"`
	Products           []models.Product `json:"products"`
	CatalogUnavailable bool             `json:"catalog_unavailable,omitempty"`
}

// Resolver é o único caminho de leitura de um visitante anônimo: mapeia o
// segmento de subdomínio para a empresa e seu catálogo, sem exigir
// identidade e sem executar mutações.
type Resolver struct {
	companies CompanyDirectory
	products  ProductLister
	cache     *cache.Client
	logger    *zap.Logger
}

func NewResolver(companies CompanyDirectory, products ProductLister, cacheClient *cache.Client, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		companies: companies,
		products:  products,
		cache:     cacheClient,
		logger:    logger,
	}
}

// Resolve busca a empresa do subdomínio (insensível a caixa) e seus
// produtos. Empresa ausente ou erro de consulta viram ErrStoreNotFound;
// falha só na listagem de produtos devolve a empresa com
// CatalogUnavailable marcado.
func (r *Resolver) Resolve(ctx context.Context, subdomain string) (*Catalog, error) {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if subdomain == "" {
		return nil, ErrStoreNotFound
	}

	company, err := r.lookupCompany(ctx, subdomain)
	if err != nil {
		r.logger.Warn("storefront company lookup failed",
			zap.String("subdomain", subdomain),
			zap.Error(err))
		return nil, ErrStoreNotFound
	}
	if company == nil {
		return nil, ErrStoreNotFound
	}

	products, err := r.products.ListByTenant(ctx, company.ID)
	if err != nil {
		r.logger.Warn("storefront catalog fetch failed",
			zap.String("subdomain", subdomain),
			zap.Error(err))
		return &Catalog{Company: company, Products: []models.Product{}, CatalogUnavailable: true}, nil
	}
	if products == nil {
		products = []models.Product{}
	}

	return &Catalog{Company: company, Products: products}, nil
}

func (r *Resolver) lookupCompany(ctx context.Context, subdomain string) (*models.Company, error) {
	if r.cache != nil {
		if company, err := r.cache.GetCompanyBySubdomain(ctx, subdomain); err == nil {
			return company, nil
		} else if !errors.Is(err, cache.Nil) {
			r.logger.Warn("storefront cache read failed", zap.Error(err))
		}
	}

	company, err := r.companies.GetCompanyBySubdomain(ctx, subdomain)
	if err != nil || company == nil {
		return company, err
	}

	if r.cache != nil {
		if err := r.cache.SetCompanyBySubdomain(ctx, company); err != nil {
			r.logger.Warn("storefront cache write failed", zap.Error(err))
		}
	}
	return company, nil
}
