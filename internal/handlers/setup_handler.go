package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/auth"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/config"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/models"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/repository"
)

// remediationScript libera as tabelas quando políticas de linha travam o
// delete no banco gerenciado. Entregue ao operador junto com o erro; nunca
// executado pela API.
const remediationScript = `
-- 1. Desativa RLS nas tabelas da aplicação
ALTER TABLE IF EXISTS public.products DISABLE ROW LEVEL SECURITY;
ALTER TABLE IF EXISTS public.companies DISABLE ROW LEVEL SECURITY;
ALTER TABLE IF EXISTS public.profiles DISABLE ROW LEVEL SECURITY;

-- 2. Garante permissão aos papéis de API
GRANT ALL ON ALL TABLES IN SCHEMA public TO postgres, anon, authenticated, service_role;
GRANT ALL ON ALL SEQUENCES IN SCHEMA public TO postgres, anon, authenticated, service_role;

-- 3. Remove políticas que possam estar travando o delete
DROP POLICY IF EXISTS "libera_tudo" ON public.products;
DROP POLICY IF EXISTS "bypass_rls" ON public.products;
DROP POLICY IF EXISTS "Enable delete for users based on user_id" ON public.products;

-- 4. Política explícita de liberação total
CREATE POLICY "permissao_total" ON public.products FOR ALL USING (true) WITH CHECK (true);
CREATE POLICY "permissao_total" ON public.companies FOR ALL USING (true) WITH CHECK (true);
CREATE POLICY "permissao_total" ON public.profiles FOR ALL USING (true) WITH CHECK (true);
`

type SetupHandler struct {
	authSvc  *auth.Service
	profiles *repository.ProfileRepository
	cfg      *config.SetupConfig
	logger   *zap.Logger
}

func NewSetupHandler(authSvc *auth.Service, profiles *repository.ProfileRepository, cfg *config.SetupConfig, logger *zap.Logger) *SetupHandler {
	return &SetupHandler{authSvc: authSvc, profiles: profiles, cfg: cfg, logger: logger}
}

// SetupMaster provisiona (ou promove) o perfil de super admin. Protegido
// pela chave mestra; idempotente sobre a identidade.
func (h *SetupHandler) SetupMaster(c *gin.Context) {
	var req models.SetupMasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.MasterKey != h.cfg.MasterKey {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid master key"})
		return
	}

	ctx := c.Request.Context()

	sess, err := h.authSvc.SignUp(ctx, req.Email, req.Password)
	if errors.Is(err, auth.ErrEmailTaken) {
		// Identidade já existe: autentica para promover o perfil.
		sess, err = h.authSvc.SignIn(ctx, req.Email, req.Password)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve master identity"})
		return
	}

	master := &models.User{
		ID:    sess.UserID,
		Name:  req.Name,
		Email: auth.NormalizeEmail(req.Email),
		Role:  models.RoleSuperAdmin,
	}
	if err := h.profiles.UpsertProfile(ctx, master); err != nil {
		h.logger.Error("super admin profile upsert failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":              "profile provisioning blocked by database policy",
			"remediation_script": remediationScript,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": sess.Token, "user": master})
}
