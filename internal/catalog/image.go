package catalog

import (
	"bytes"

	"github.com/disintegration/imaging"
)

// Limite de lado para fotos de produto. Fotos maiores são reduzidas antes do
// upload; menores passam intactas pelo Fit.
const maxImageSide = 1600

const jpegQuality = 85

// NormalizeImage decodifica a foto enviada, limita o tamanho e reencoda em
// JPEG. É melhor-esforço: payload que não decodifica volta como chegou, e o
// blob storage recebe o original.
func NormalizeImage(data []byte, mimeType string) ([]byte, string) {
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return data, mimeType
	}

	resized := imaging.Fit(src, maxImageSide, maxImageSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return data, mimeType
	}

	return buf.Bytes(), "image/jpeg"
}
