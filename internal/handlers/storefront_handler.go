package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/storefront"
)

type StorefrontHandler struct {
	resolver *storefront.Resolver
}

func NewStorefrontHandler(resolver *storefront.Resolver) *StorefrontHandler {
	return &StorefrontHandler{resolver: resolver}
}

// Show devolve a vitrine pública de um subdomínio. Loja inexistente é 404
// terminal; loja existente com catálogo indisponível volta 200 com a flag.
func (h *StorefrontHandler) Show(c *gin.Context) {
	catalog, err := h.resolver.Resolve(c.Request.Context(), c.Param("subdomain"))
	if err != nil {
		if errors.Is(err, storefront.ErrStoreNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "store not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve store"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"company":             catalog.Company,
		"products":            catalog.Products,
		"catalog_unavailable": catalog.CatalogUnavailable,
	})
}
