package storage

import (
	"context"
	"io"
)

// Driver abstrai o backend de arquivos. A aplicação só grava e apaga
// imagens públicas; a URL devolvida vai direto para o banco.
type Driver interface {
	// Upload grava o arquivo e devolve o caminho interno e a URL pública.
	Upload(ctx context.Context, file io.Reader, path string) (storagePath string, publicURL string, err error)

	// Delete remove o arquivo. Caminho inexistente não é erro.
	Delete(ctx context.Context, path string) error

	// GetPublicURL devolve a URL pública de um caminho já gravado.
	GetPublicURL(path string) string
}
