package guard

import (
	"strings"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/models"
)

// View é a tela escolhida pelo guard para uma localização.
type View string

const (
	ViewLoading     View = "loading"
	ViewLanding     View = "landing"
	ViewLogin       View = "login"
	ViewSignup      View = "signup"
	ViewSetupMaster View = "setup-master"
	ViewStorefront  View = "storefront"
	ViewSuperAdmin  View = "super-admin"
	ViewTenant      View = "tenant"
	ViewSettings    View = "settings"
	ViewRedirect    View = "redirect"
)

// Decision é o resultado da avaliação: a view a renderizar ou um redirect.
type Decision struct {
	View       View   `json:"view"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// NormalizePath compara caminhos de forma insensível a caixa, espaços e
// barra final. Vazio normaliza para a raiz. A função é idempotente.
func NormalizePath(path string) string {
	p := strings.TrimSpace(strings.ToLower(path))
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return "/"
	}
	return p
}

// Evaluate é uma função pura de (caminho, resolução em andamento, usuário)
// para a view a renderizar. Caminhos não casados caem na landing — nunca em
// uma tela de erro.
func Evaluate(path string, loading bool, user *models.User) Decision {
	clean := NormalizePath(path)

	// Enquanto a identidade ainda resolve, telas que dependem dela mostram
	// um estado neutro em vez de uma view errada.
	if loading && (strings.HasPrefix(clean, "/dashboard") || clean == "/login") {
		return Decision{View: ViewLoading}
	}

	switch clean {
	case "/":
		return Decision{View: ViewLanding}
	case "/login":
		if user != nil {
			return Decision{View: ViewRedirect, RedirectTo: "/dashboard"}
		}
		return Decision{View: ViewLogin}
	case "/signup":
		if user != nil {
			return Decision{View: ViewRedirect, RedirectTo: "/dashboard"}
		}
		return Decision{View: ViewSignup}
	case "/setup-master":
		// Escape hatch do operador: sempre alcançável, protegido por chave
		// estática e não por identidade.
		return Decision{View: ViewSetupMaster}
	}

	if strings.HasPrefix(clean, "/loja/") {
		return Decision{View: ViewStorefront}
	}

	if strings.HasPrefix(clean, "/dashboard") {
		if user == nil {
			return Decision{View: ViewRedirect, RedirectTo: "/login"}
		}
		if clean == "/dashboard/settings" {
			return Decision{View: ViewSettings}
		}
		if user.Role == models.RoleSuperAdmin {
			return Decision{View: ViewSuperAdmin}
		}
		return Decision{View: ViewTenant}
	}

	return Decision{View: ViewLanding}
}
