package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/auth"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/middleware"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/models"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/session"
)

type AuthHandler struct {
	authSvc  *auth.Service
	resolver *session.Resolver
}

func NewAuthHandler(authSvc *auth.Service, resolver *session.Resolver) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, resolver: resolver}
}

// Login autentica e devolve o token com a identidade resolvida. Identidade
// sem perfil resolúvel volta 401: o token sozinho não dá acesso a nada.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.authSvc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	user, company := h.resolver.ResolveUser(c.Request.Context(), sess.UserID)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "profile not available"})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Token:   sess.Token,
		User:    user,
		Company: company,
	})
}

// Logout revoga a sessão corrente. Sempre responde sucesso: o estado local
// do cliente deve ser limpo mesmo se a revogação remota falhar.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.TokenFrom(c)
	_ = h.authSvc.SignOut(c.Request.Context(), token)
	c.Status(http.StatusNoContent)
}

// Me devolve a identidade corrente já resolvida pelo middleware.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user":    middleware.UserFrom(c),
		"company": middleware.CompanyFrom(c),
	})
}
