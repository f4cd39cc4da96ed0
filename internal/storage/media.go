package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MediaStore nomeia e grava as imagens das vitrines em cima de um Driver.
// Toda chave é prefixada pelo tenant dono do arquivo.
type MediaStore struct {
	driver Driver
}

func NewMediaStore(driver Driver) *MediaStore {
	return &MediaStore{driver: driver}
}

// UploadProductImage grava a foto de um produto e devolve a URL pública.
func (m *MediaStore) UploadProductImage(ctx context.Context, tenantID uuid.UUID, data []byte, mimeType string) (string, error) {
	path := fmt.Sprintf("%s/products/%d_%s%s", tenantID, time.Now().UnixMilli(), uuid.NewString(), extensionForMime(mimeType))
	return m.upload(ctx, path, data)
}

// UploadBranding grava logo ou banner da vitrine. kind é "logo" ou "hero".
func (m *MediaStore) UploadBranding(ctx context.Context, tenantID uuid.UUID, kind string, data []byte, mimeType string) (string, error) {
	path := fmt.Sprintf("%s/branding/%s_%d%s", tenantID, kind, time.Now().UnixMilli(), extensionForMime(mimeType))
	return m.upload(ctx, path, data)
}

func (m *MediaStore) upload(ctx context.Context, path string, data []byte) (string, error) {
	_, publicURL, err := m.driver.Upload(ctx, bytes.NewReader(data), path)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return publicURL, nil
}

func extensionForMime(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
