package router

import (
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// AddressSurface é a superfície de endereço do ambiente hospedeiro (barra de
// endereço, iframe, etc). Replace pode ser negado pelo ambiente — o Router
// continua funcionando apenas com o estado interno nesse caso.
type AddressSurface interface {
	Replace(path string) error
}

// NoopSurface aceita qualquer atualização de endereço sem efeito colateral.
type NoopSurface struct{}

func (NoopSurface) Replace(string) error { return nil }

// Location é a localização lógica atual: o caminho bruto navegado e os
// parâmetros extraídos das rotas conhecidas.
type Location struct {
	Path   string
	Params map[string]string
}

// Router é a fonte única da localização atual. Mudanças chegam por Navigate
// (interno) ou SetFromAddress (externo); ambas convergem para o mesmo path.
type Router struct {
	mu      sync.RWMutex
	path    string
	surface AddressSurface
	logger  *zap.Logger
	subs    []func(Location)
}

func New(surface AddressSurface, logger *zap.Logger) *Router {
	if surface == nil {
		surface = NoopSurface{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		path:    "/",
		surface: surface,
		logger:  logger,
	}
}

// Navigate normaliza o destino para começar com "/" e tenta refletir na
// superfície de endereço. O estado interno é atualizado mesmo quando a
// superfície nega a mudança.
func (r *Router) Navigate(to string) {
	if !strings.HasPrefix(to, "/") {
		to = "/" + to
	}

	if err := r.surface.Replace(to); err != nil {
		r.logger.Warn("address surface rejected navigation, keeping internal state",
			zap.String("to", to),
			zap.Error(err))
	}

	r.setPath(to)
}

// SetFromAddress registra uma mudança de endereço observada externamente.
func (r *Router) SetFromAddress(path string) {
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	r.setPath(path)
}

func (r *Router) setPath(path string) {
	r.mu.Lock()
	r.path = path
	subs := make([]func(Location), len(r.subs))
	copy(subs, r.subs)
	loc := r.locationLocked()
	r.mu.Unlock()

	for _, fn := range subs {
		fn(loc)
	}
}

// Subscribe registra um observador chamado a cada mudança de localização.
func (r *Router) Subscribe(fn func(Location)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, fn)
}

// Location devolve o caminho bruto atual e os parâmetros derivados dele.
func (r *Router) Location() Location {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locationLocked()
}

func (r *Router) locationLocked() Location {
	return Location{
		Path:   r.path,
		Params: ExtractParams(r.path),
	}
}

// ExtractParams casa o caminho contra os formatos de rota conhecidos. Um
// caminho de loja produz o parâmetro "subdomain" (terceiro segmento,
// percent-decoded).
func ExtractParams(path string) map[string]string {
	params := map[string]string{}

	if strings.HasPrefix(strings.ToLower(path), "/loja/") {
		parts := strings.Split(path, "/")
		if len(parts) >= 3 && parts[2] != "" {
			sub, err := url.PathUnescape(parts[2])
			if err != nil {
				sub = parts[2]
			}
			params["subdomain"] = sub
		}
	}

	return params
}
