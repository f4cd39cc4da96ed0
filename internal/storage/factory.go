package storage

import (
	"fmt"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/config"
)

// NewDriver cria o driver de arquivos conforme a configuração.
func NewDriver(cfg *config.StorageConfig) (Driver, error) {
	switch cfg.Driver {
	case "local", "":
		uploadsPath := cfg.UploadsPath
		if uploadsPath == "" {
			uploadsPath = "./uploads"
		}
		return NewLocalStorage(uploadsPath), nil

	case "s3":
		return NewS3Storage(cfg)

	case "r2":
		return NewR2Storage(cfg)

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
