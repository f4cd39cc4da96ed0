package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/cache"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/catalog"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/middleware"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/models"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/repository"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/storage"
)

type CompanyHandler struct {
	companies *repository.CompanyRepository
	profiles  *repository.ProfileRepository
	media     *storage.MediaStore
	cache     *cache.Client
	logger    *zap.Logger
}

func NewCompanyHandler(companies *repository.CompanyRepository, profiles *repository.ProfileRepository, media *storage.MediaStore, cacheClient *cache.Client, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		companies: companies,
		profiles:  profiles,
		media:     media,
		cache:     cacheClient,
		logger:    logger,
	}
}

// UpdateSettings grava nome e whatsapp da vitrine do tenant autenticado e
// invalida o cache público do subdomínio.
func (h *CompanyHandler) UpdateSettings(c *gin.Context) {
	company := middleware.CompanyFrom(c)
	if company == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no company linked to this profile"})
		return
	}

	var req models.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		company.Name = *req.Name
	}
	if req.Whatsapp != nil {
		company.Whatsapp = *req.Whatsapp
	}

	if err := h.companies.Update(c.Request.Context(), company); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update company"})
		return
	}

	h.invalidate(c, company.Subdomain)
	c.JSON(http.StatusOK, gin.H{"company": company})
}

// UploadLogo troca o logo da vitrine.
func (h *CompanyHandler) UploadLogo(c *gin.Context) {
	h.uploadBranding(c, "logo")
}

// UploadHero troca o banner da vitrine.
func (h *CompanyHandler) UploadHero(c *gin.Context) {
	h.uploadBranding(c, "hero")
}

func (h *CompanyHandler) uploadBranding(c *gin.Context, kind string) {
	company := middleware.CompanyFrom(c)
	if company == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no company linked to this profile"})
		return
	}

	data, mimeType, found := readMultipartImage(c)
	if !found {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	data, mimeType = catalog.NormalizeImage(data, mimeType)

	url, err := h.media.UploadBranding(c.Request.Context(), company.ID, kind, data, mimeType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
		return
	}

	switch kind {
	case "logo":
		company.LogoURL = url
	case "hero":
		company.HeroURL = url
	}

	if err := h.companies.Update(c.Request.Context(), company); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update company"})
		return
	}

	h.invalidate(c, company.Subdomain)
	c.JSON(http.StatusOK, gin.H{"company": company})
}

// ListCompanies devolve todas as empresas (painel do super admin).
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	companies, err := h.companies.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list companies"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"companies": companies})
}

// UpdateStatus ativa ou desativa uma empresa (painel do super admin).
func (h *CompanyHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return
	}

	var req models.UpdateCompanyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Status {
	case models.CompanyStatusActive, models.CompanyStatusInactive, models.CompanyStatusPending:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	if err := h.companies.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
		return
	}

	if company, err := h.companies.GetCompany(c.Request.Context(), id); err == nil && company != nil {
		h.invalidate(c, company.Subdomain)
	}

	c.Status(http.StatusNoContent)
}

// ListProfiles devolve os perfis de uma empresa (painel do super admin).
func (h *CompanyHandler) ListProfiles(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return
	}

	users, err := h.profiles.ListByTenant(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list profiles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profiles": users})
}

// invalidate remove a entrada pública do subdomínio no cache. Falha aqui só
// atrasa a propagação até o TTL vencer.
func (h *CompanyHandler) invalidate(c *gin.Context, subdomain string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateCompany(c.Request.Context(), subdomain); err != nil {
		h.logger.Warn("cache invalidation failed", zap.String("subdomain", subdomain), zap.Error(err))
	}
}
