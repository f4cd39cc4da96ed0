package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/auth"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/models"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/session"
)

const (
	ContextUser    = "user"
	ContextCompany = "company"
	ContextToken   = "token"
)

// RequireAuth valida o token Bearer e resolve a identidade completa
// (perfil + empresa). Token válido sem perfil resolúvel é tratado como não
// autenticado, igual ao resto do sistema.
func RequireAuth(authSvc *auth.Service, resolver *session.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			c.Abort()
			return
		}
		token := parts[1]

		sess, err := authSvc.SessionFromToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		user, company := resolver.ResolveUser(c.Request.Context(), sess.UserID)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "profile not available"})
			c.Abort()
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextCompany, company)
		c.Set(ContextToken, token)

		c.Next()
	}
}

// RequireSuperAdmin exige o papel SUPER_ADMIN. Depende de RequireAuth.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := UserFrom(c)
		if user == nil || user.Role != models.RoleSuperAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "super admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireTenant exige identidade vinculada a uma empresa. Depende de
// RequireAuth.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CompanyFrom(c) == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "no company linked to this profile"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserFrom lê o perfil autenticado do contexto.
func UserFrom(c *gin.Context) *models.User {
	if v, ok := c.Get(ContextUser); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// CompanyFrom lê a empresa do perfil autenticado, quando existe.
func CompanyFrom(c *gin.Context) *models.Company {
	if v, ok := c.Get(ContextCompany); ok {
		if company, ok := v.(*models.Company); ok {
			return company
		}
	}
	return nil
}

// TokenFrom lê o token Bearer cru, usado no logout.
func TokenFrom(c *gin.Context) string {
	if v, ok := c.Get(ContextToken); ok {
		if token, ok := v.(string); ok {
			return token
		}
	}
	return ""
}
