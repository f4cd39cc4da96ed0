package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/auth"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/models"
)

var (
	// ErrSubdomainTaken: colisão de subdomínio é falha de validação dura —
	// nunca sufixada ou repetida com variante automaticamente.
	ErrSubdomainTaken = errors.New("subdomain already in use")

	// ErrInvalidSubdomain: o nome da empresa não produziu nenhum caractere
	// aproveitável para o link.
	ErrInvalidSubdomain = errors.New("company name yields an empty subdomain")

	// ErrEmailTaken re-exporta a colisão de identidade para quem valida o
	// formulário.
	ErrEmailTaken = auth.ErrEmailTaken
)

// ErrProfileProvisioning marca a janela de inconsistência conhecida do
// cadastro em duas fases: a identidade foi criada, mas a empresa ou o perfil
// do admin falharam depois. A identidade fica órfã para reconciliação
// manual; não há rollback compensatório.
type ErrProfileProvisioning struct {
	IdentityID uuid.UUID
	Cause      error
}

func (e *ErrProfileProvisioning) Error() string {
	return fmt.Sprintf("tenant provisioning failed after identity %s was created: %v", e.IdentityID, e.Cause)
}

func (e *ErrProfileProvisioning) Unwrap() error { return e.Cause }

// Identities é a fatia do colaborador de auth usada pelo cadastro.
type Identities interface {
	SignUp(ctx context.Context, email, password string) (*auth.Session, error)
}

// Directory confere colisão de subdomínio antes do commit.
type Directory interface {
	GetCompanyBySubdomain(ctx context.Context, subdomain string) (*models.Company, error)
}

// TenantWriter cria a empresa e o perfil do admin.
type TenantWriter interface {
	CreateCompany(ctx context.Context, name, subdomain string, status models.CompanyStatus) (*models.Company, error)
	CreateProfile(ctx context.Context, user *models.User) error
}

// Provisioner executa o cadastro em duas fases: fase 1 valida o nome e o
// link; fase 2 cria identidade e depois empresa + perfil do admin.
type Provisioner struct {
	identities Identities
	directory  Directory
	tenants    TenantWriter
	logger     *zap.Logger
}

func NewProvisioner(identities Identities, directory Directory, tenants TenantWriter, logger *zap.Logger) *Provisioner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provisioner{
		identities: identities,
		directory:  directory,
		tenants:    tenants,
		logger:     logger,
	}
}

// SanitizeSubdomain deriva o candidato a subdomínio do nome da empresa:
// minúsculas, sem diacríticos, só alfanuméricos.
func SanitizeSubdomain(companyName string) string {
	lowered := strings.ToLower(companyName)

	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		lowered,
	)
	if err != nil {
		stripped = lowered
	}

	var b strings.Builder
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CheckSubdomain é a fase 1: deriva o candidato e confere colisão. Colisão
// bloqueia o avanço; não há sufixo automático.
func (p *Provisioner) CheckSubdomain(ctx context.Context, companyName string) (string, error) {
	subdomain := SanitizeSubdomain(companyName)
	if subdomain == "" {
		return "", ErrInvalidSubdomain
	}

	existing, err := p.directory.GetCompanyBySubdomain(ctx, subdomain)
	if err != nil {
		return subdomain, fmt.Errorf("subdomain availability check failed: %w", err)
	}
	if existing != nil {
		return subdomain, ErrSubdomainTaken
	}

	return subdomain, nil
}

// Provisioned é o resultado de um cadastro completo.
type Provisioned struct {
	Session *auth.Session
	Company *models.Company
	Admin   *models.User
}

// Register é a fase 2. A colisão de subdomínio é reconferida antes de
// qualquer escrita. A identidade é criada primeiro; se a criação de empresa
// ou perfil falhar depois, a falha volta como ErrProfileProvisioning com o
// id da identidade órfã.
func (p *Provisioner) Register(ctx context.Context, req *models.SignupRequest) (*Provisioned, error) {
	subdomain := SanitizeSubdomain(req.Subdomain)
	if subdomain == "" {
		return nil, ErrInvalidSubdomain
	}

	existing, err := p.directory.GetCompanyBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, fmt.Errorf("subdomain availability check failed: %w", err)
	}
	if existing != nil {
		return nil, ErrSubdomainTaken
	}

	// Passo 1: identidade.
	sess, err := p.identities.SignUp(ctx, req.AdminEmail, req.Password)
	if err != nil {
		return nil, err
	}

	// Passo 2: empresa + perfil do admin, sem transação compensatória.
	company, err := p.tenants.CreateCompany(ctx, req.CompanyName, subdomain, models.CompanyStatusActive)
	if err != nil {
		p.logger.Error("identity orphaned: company creation failed",
			zap.String("identity_id", sess.UserID.String()),
			zap.Error(err))
		return nil, &ErrProfileProvisioning{IdentityID: sess.UserID, Cause: err}
	}

	admin := &models.User{
		ID:       sess.UserID,
		Name:     req.AdminName,
		Email:    auth.NormalizeEmail(req.AdminEmail),
		Role:     models.RoleAdmin,
		TenantID: &company.ID,
	}
	if err := p.tenants.CreateProfile(ctx, admin); err != nil {
		p.logger.Error("identity orphaned: admin profile creation failed",
			zap.String("identity_id", sess.UserID.String()),
			zap.String("company_id", company.ID.String()),
			zap.Error(err))
		return nil, &ErrProfileProvisioning{IdentityID: sess.UserID, Cause: err}
	}

	return &Provisioned{Session: sess, Company: company, Admin: admin}, nil
}
