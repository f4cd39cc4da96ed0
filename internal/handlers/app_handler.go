package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/auth"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/cache"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/guard"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/models"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/router"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/session"
)

type AppHandler struct {
	authSvc  *auth.Service
	resolver *session.Resolver
	pool     *pgxpool.Pool
	cache    *cache.Client
}

func NewAppHandler(authSvc *auth.Service, resolver *session.Resolver, pool *pgxpool.Pool, cacheClient *cache.Client) *AppHandler {
	return &AppHandler{authSvc: authSvc, resolver: resolver, pool: pool, cache: cacheClient}
}

// Resolve avalia um caminho de navegação para o cliente: qual view
// renderizar e se há redirect. O token é opcional; inválido conta como
// visitante.
func (h *AppHandler) Resolve(c *gin.Context) {
	path := c.Query("path")

	var user *models.User
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			if sess, err := h.authSvc.SessionFromToken(c.Request.Context(), parts[1]); err == nil {
				user, _ = h.resolver.ResolveUser(c.Request.Context(), sess.UserID)
			}
		}
	}

	decision := guard.Evaluate(path, false, user)
	c.JSON(http.StatusOK, gin.H{
		"decision": decision,
		"params":   router.ExtractParams(path),
	})
}

// Health confere banco e cache.
func (h *AppHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK
	checks := gin.H{"database": "ok", "cache": "ok"}

	if err := h.pool.Ping(ctx); err != nil {
		checks["database"] = "down"
		status = http.StatusServiceUnavailable
	}
	if h.cache != nil {
		if err := h.cache.Client.Ping(ctx).Err(); err != nil {
			checks["cache"] = "down"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, checks)
}
