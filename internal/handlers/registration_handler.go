package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/models"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/registration"
)

type RegistrationHandler struct {
	provisioner *registration.Provisioner
}

func NewRegistrationHandler(provisioner *registration.Provisioner) *RegistrationHandler {
	return &RegistrationHandler{provisioner: provisioner}
}

// CheckSubdomain é a fase 1 do cadastro: deriva o link a partir do nome e
// informa se está livre. Não cria nada.
func (h *RegistrationHandler) CheckSubdomain(c *gin.Context) {
	var req models.SubdomainCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subdomain, err := h.provisioner.CheckSubdomain(c.Request.Context(), req.CompanyName)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, models.SubdomainCheckResponse{Subdomain: subdomain, Available: true})
	case errors.Is(err, registration.ErrSubdomainTaken):
		c.JSON(http.StatusOK, models.SubdomainCheckResponse{Subdomain: subdomain, Available: false})
	case errors.Is(err, registration.ErrInvalidSubdomain):
		c.JSON(http.StatusBadRequest, gin.H{"error": "company name yields an empty subdomain"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "subdomain check failed"})
	}
}

// Signup é a fase 2: cria identidade, empresa e perfil do admin.
func (h *RegistrationHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.provisioner.Register(c.Request.Context(), &req)
	if err != nil {
		var provErr *registration.ErrProfileProvisioning
		switch {
		case errors.Is(err, registration.ErrSubdomainTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "subdomain already in use"})
		case errors.Is(err, registration.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		case errors.Is(err, registration.ErrInvalidSubdomain):
			c.JSON(http.StatusBadRequest, gin.H{"error": "company name yields an empty subdomain"})
		case errors.As(err, &provErr):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "account created but store provisioning failed, contact support"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, models.LoginResponse{
		Token:   result.Session.Token,
		User:    result.Admin,
		Company: result.Company,
	})
}
