package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole representa o papel de um usuário no sistema
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleCollab     UserRole = "COLLAB"
)

// CompanyStatus representa os status possíveis de uma empresa (tenant)
type CompanyStatus string

const (
	CompanyStatusActive   CompanyStatus = "ACTIVE"
	CompanyStatusInactive CompanyStatus = "INACTIVE"
	CompanyStatusPending  CompanyStatus = "PENDING"
)

// User é o perfil de um usuário autenticado. TenantID é preenchido apenas
// quando o usuário administra exatamente uma empresa.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      UserRole   `json:"role"`
	TenantID  *uuid.UUID `json:"tenant_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Company é um tenant. Subdomain é o único identificador público e precisa
// ser globalmente único entre empresas não removidas.
type Company struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Subdomain string        `json:"subdomain"`
	Status    CompanyStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	LogoURL   string        `json:"logo_url,omitempty"`
	HeroURL   string        `json:"hero_url,omitempty"`
	Whatsapp  string        `json:"whatsapp,omitempty"`
}

// Product pertence a exatamente uma empresa. TenantID nunca muda depois da
// criação — a reciclagem sobrescreve os demais campos mantendo a identidade.
type Product struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DTOs for API requests/responses

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string   `json:"token"`
	User    *User    `json:"user"`
	Company *Company `json:"company,omitempty"`
}

// SubdomainCheckRequest é a fase 1 do cadastro: apenas valida o link.
type SubdomainCheckRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
}

type SubdomainCheckResponse struct {
	Subdomain string `json:"subdomain"`
	Available bool   `json:"available"`
}

// SignupRequest é a fase 2 do cadastro: identidade + empresa em dois passos.
type SignupRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Subdomain   string `json:"subdomain" binding:"required"`
	AdminName   string `json:"admin_name" binding:"required"`
	AdminEmail  string `json:"admin_email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
}

type UpdateCompanyRequest struct {
	Name     *string `json:"name,omitempty"`
	Whatsapp *string `json:"whatsapp,omitempty"`
}

type UpdateCompanyStatusRequest struct {
	Status CompanyStatus `json:"status" binding:"required"`
}

type SetupMasterRequest struct {
	MasterKey string `json:"master_key" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
}
