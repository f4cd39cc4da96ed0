package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/config"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/models"
)

// Suggestion é o palpite estruturado extraído de uma foto de produto.
type Suggestion struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	SuggestedPrice float64 `json:"suggested_price"`
}

// Kind classifica o desfecho de uma análise. A política "nunca bloquear o
// usuário" depende dessa distinção ser explícita: degraded e failed seguem
// para entrada manual, nunca viram erro bloqueante.
type Kind int

const (
	// KindOK: sugestão completa e bem formada.
	KindOK Kind = iota
	// KindDegraded: o serviço respondeu, mas o payload veio malformado ou
	// parcial. A sugestão carrega o que foi aproveitável.
	KindDegraded
	// KindFailed: falha de transporte ou do serviço. Sem sugestão.
	KindFailed
)

// Result é o desfecho de uma análise de imagem.
type Result struct {
	Kind       Kind
	Suggestion Suggestion
	Err        error
}

// Analyzer envia uma foto de produto para o colaborador de entendimento de
// imagem e devolve uma sugestão de cadastro.
type Analyzer interface {
	AnalyzeProductPhoto(ctx context.Context, data []byte, mimeType string) Result
}

// Instrução fixa enviada junto com cada foto.
const productPhotoPrompt = "Analise esta foto de produto de moda. Retorne APENAS um objeto JSON com: name, price (numérico) e description curta."

// GeminiClient implementa Analyzer contra a API generateContent do Gemini.
type GeminiClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
	logger     *zap.Logger
}

func NewGeminiClient(cfg *config.AIConfig, logger *zap.Logger) *GeminiClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		logger:     logger,
	}
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// AnalyzeProductPhoto envia a imagem com a instrução fixa. Qualquer falha é
// não fatal para quem chama: transporte vira KindFailed, payload estranho
// vira KindDegraded.
func (c *GeminiClient) AnalyzeProductPhoto(ctx context.Context, data []byte, mimeType string) Result {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	reqBody := generateContentRequest{
		Contents: []content{{
			Parts: []part{
				{Text: productPhotoPrompt},
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(data),
				}},
			},
		}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Result{Kind: KindFailed, Err: fmt.Errorf("failed to encode analysis request: %w", err)}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Result{Kind: KindFailed, Err: fmt.Errorf("failed to build analysis request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("image analysis transport failure", zap.Error(err))
		return Result{Kind: KindFailed, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Kind: KindFailed, Err: fmt.Errorf("failed to read analysis response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("image analysis service error",
			zap.Int("status", resp.StatusCode))
		return Result{Kind: KindFailed, Err: fmt.Errorf("analysis service returned status %d", resp.StatusCode)}
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{Kind: KindDegraded, Err: fmt.Errorf("unparseable analysis response: %w", err)}
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return Result{Kind: KindDegraded, Err: fmt.Errorf("analysis response carried no content")}
	}

	return ParseSuggestion(parsed.Candidates[0].Content.Parts[0].Text)
}

// ParseSuggestion extrai a sugestão do texto devolvido pelo modelo. O texto
// costuma vir cercado de markdown e com chaves ora em inglês, ora em
// português, então o parse é deliberadamente tolerante.
func ParseSuggestion(text string) Result {
	raw := strings.TrimSpace(text)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	// Aproveita só o primeiro objeto JSON presente no texto.
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}

	var record models.Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return Result{Kind: KindDegraded, Err: fmt.Errorf("suggestion is not valid JSON: %w", err)}
	}

	suggestion := SuggestionFromRecord(record)
	if suggestion.Name == "" && suggestion.Description == "" && suggestion.SuggestedPrice == 0 {
		return Result{Kind: KindDegraded, Suggestion: suggestion, Err: fmt.Errorf("suggestion carried no usable fields")}
	}

	return Result{Kind: KindOK, Suggestion: suggestion}
}

// SuggestionFromRecord mapeia um registro frouxo para Suggestion, aceitando
// as variantes de chave que o modelo realmente produz.
func SuggestionFromRecord(r models.Record) Suggestion {
	s := Suggestion{}

	for _, key := range []string{"name", "nome"} {
		if v, ok := r[key].(string); ok && v != "" {
			s.Name = v
			break
		}
	}
	for _, key := range []string{"description", "descricao", "descrição"} {
		if v, ok := r[key].(string); ok && v != "" {
			s.Description = v
			break
		}
	}

	if price, ok := r.PriceField("suggestedPrice", "suggested_price", "price", "preco", "preço"); ok {
		s.SuggestedPrice = price
	}

	return s
}
