package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/ai"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/catalog"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/middleware"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/repository"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/storage"
)

// maxImageBytes limita o upload de foto de produto.
const maxImageBytes = 10 << 20

type ProductHandler struct {
	products *repository.ProductRepository
	media    *storage.MediaStore
	analyzer ai.Analyzer
	logger   *zap.Logger
}

func NewProductHandler(products *repository.ProductRepository, media *storage.MediaStore, analyzer ai.Analyzer, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, media: media, analyzer: analyzer, logger: logger}
}

// manager monta o ciclo de vida de catálogo restrito ao tenant do request.
func (h *ProductHandler) manager(tenantID uuid.UUID) *catalog.Manager {
	return catalog.NewManager(h.products.Scoped(tenantID), h.media, h.analyzer, h.logger)
}

func (h *ProductHandler) tenantID(c *gin.Context) (uuid.UUID, bool) {
	company := middleware.CompanyFrom(c)
	if company == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no company linked to this profile"})
		return uuid.Nil, false
	}
	return company.ID, true
}

// List devolve o catálogo do tenant autenticado.
func (h *ProductHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	products, err := h.manager(tenantID).List(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// Analyze recebe uma foto e devolve a sugestão de cadastro. Falha da análise
// não é erro do request: volta 200 com degraded, o preenchimento segue
// manual.
func (h *ProductHandler) Analyze(c *gin.Context) {
	if _, ok := h.tenantID(c); !ok {
		return
	}

	data, mimeType, ok := h.readImage(c)
	if !ok {
		return
	}

	data, mimeType = catalog.NormalizeImage(data, mimeType)

	result := h.analyzer.AnalyzeProductPhoto(c.Request.Context(), data, mimeType)
	if result.Kind != ai.KindOK {
		c.JSON(http.StatusOK, gin.H{"degraded": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestion": result.Suggestion})
}

// Create cadastra um produto a partir do formulário multipart, com foto
// opcional.
func (h *ProductHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	sess := h.manager(tenantID).NewSession(tenantID)
	h.saveSession(c, sess, http.StatusCreated)
}

// Update edita um produto existente. Sem foto nova, a imagem anterior é
// mantida.
func (h *ProductHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	mgr := h.manager(tenantID)
	product, err := mgr.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	sess := mgr.EditSession(product)
	h.saveSession(c, sess, http.StatusOK)
}

// Delete exclui e verifica o efeito. Exclusão engolida pela política do
// banco volta 409 com a recuperação sancionada: reciclar o cadastro.
func (h *ProductHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.manager(tenantID).Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrPolicyBlocked) {
			c.JSON(http.StatusConflict, gin.H{
				"error":      "delete blocked by database policy",
				"recovery":   "recycle",
				"recyclable": true,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Recycle sobrescreve no lugar um produto que não pôde ser excluído: mesma
// linha, mesmo id, conteúdo novo. Nenhuma linha órfã é criada.
func (h *ProductHandler) Recycle(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	mgr := h.manager(tenantID)
	product, err := mgr.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	sess := mgr.RecycleSession(product)
	h.saveSession(c, sess, http.StatusOK)
}

// saveSession aplica o formulário multipart (campos + foto opcional) na
// sessão e persiste.
func (h *ProductHandler) saveSession(c *gin.Context, sess *catalog.Session, okStatus int) {
	sess.SetForm(catalog.Form{
		Name:        c.PostForm("name"),
		Price:       c.PostForm("price"),
		Description: c.PostForm("description"),
	})

	if data, mimeType, found := readMultipartImage(c); found {
		data, mimeType = catalog.NormalizeImage(data, mimeType)
		sess.SetImage(data, mimeType)
	}

	product, err := sess.Save(c.Request.Context())
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidPrice) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
			return
		}
		// O formulário continua aberto no cliente; a mensagem crua do
		// backend vai junto para orientar o retry.
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "retryable": true})
		return
	}

	c.JSON(okStatus, gin.H{"product": product})
}

// readImage lê o campo "image" obrigatório do multipart.
func (h *ProductHandler) readImage(c *gin.Context) ([]byte, string, bool) {
	data, mimeType, found := readMultipartImage(c)
	if !found {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return nil, "", false
	}
	return data, mimeType, true
}

// readMultipartImage lê o campo "image" de um formulário multipart.
func readMultipartImage(c *gin.Context) ([]byte, string, bool) {
	header, err := c.FormFile("image")
	if err != nil {
		return nil, "", false
	}
	if header.Size > maxImageBytes {
		return nil, "", false
	}

	file, err := header.Open()
	if err != nil {
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		return nil, "", false
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return data, mimeType, true
}
