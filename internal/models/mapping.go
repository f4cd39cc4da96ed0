package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record é uma linha externa de formato frouxo (JSON de cache, resposta de
// colaborador). As funções Map* validam e convertem para as entidades
// tipadas, aceitando as duas grafias de chave (snake_case e camelCase) e
// aplicando defaults determinísticos para campos opcionais ausentes.
type Record map[string]any

func (r Record) str(keys ...string) string {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func (r Record) num(keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(n, ",", "."))
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// PriceField lê um campo numérico que pode chegar como número JSON ou como
// string com vírgula decimal.
func (r Record) PriceField(keys ...string) (float64, bool) {
	return r.num(keys...)
}

func (r Record) id(keys ...string) (uuid.UUID, error) {
	raw := r.str(keys...)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("missing id field")
	}
	return uuid.Parse(raw)
}

func (r Record) timestamp(keys ...string) time.Time {
	raw := r.str(keys...)
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Time{}
}

// MapCompany converte um registro externo em Company. O subdomain é sempre
// normalizado para minúsculas na borda.
func MapCompany(r Record) (*Company, error) {
	id, err := r.id("id")
	if err != nil {
		return nil, fmt.Errorf("invalid company record: %w", err)
	}

	name := r.str("name")
	if name == "" {
		return nil, fmt.Errorf("invalid company record: missing name")
	}

	status := CompanyStatus(r.str("status"))
	switch status {
	case CompanyStatusActive, CompanyStatusInactive, CompanyStatusPending:
	default:
		status = CompanyStatusPending
	}

	return &Company{
		ID:        id,
		Name:      name,
		Subdomain: strings.ToLower(r.str("subdomain")),
		Status:    status,
		CreatedAt: r.timestamp("created_at", "createdAt"),
		LogoURL:   r.str("logo_url", "logoUrl"),
		HeroURL:   r.str("hero_url", "heroUrl"),
		Whatsapp:  r.str("whatsapp"),
	}, nil
}

// MapUser converte um registro externo em User. Papel desconhecido vira
// COLLAB, o papel de menor privilégio.
func MapUser(r Record) (*User, error) {
	id, err := r.id("id")
	if err != nil {
		return nil, fmt.Errorf("invalid profile record: %w", err)
	}

	role := UserRole(r.str("role"))
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleCollab:
	default:
		role = RoleCollab
	}

	user := &User{
		ID:        id,
		Name:      r.str("name"),
		Email:     r.str("email"),
		Role:      role,
		CreatedAt: r.timestamp("created_at", "createdAt"),
	}

	if raw := r.str("tenant_id", "tenantId"); raw != "" {
		tenantID, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid profile record: bad tenant_id: %w", err)
		}
		user.TenantID = &tenantID
	}

	return user, nil
}

// MapProduct converte um registro externo em Product.
func MapProduct(r Record) (*Product, error) {
	id, err := r.id("id")
	if err != nil {
		return nil, fmt.Errorf("invalid product record: %w", err)
	}

	tenantID, err := r.id("tenant_id", "tenantId")
	if err != nil {
		return nil, fmt.Errorf("invalid product record: missing tenant_id")
	}

	price, _ := r.num("price")

	return &Product{
		ID:          id,
		TenantID:    tenantID,
		Name:        r.str("name"),
		Price:       price,
		Description: r.str("description"),
		ImageURL:    r.str("image_url", "imageUrl"),
		CreatedAt:   r.timestamp("created_at", "createdAt"),
	}, nil
}
