package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/config"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/models"
)

// Nil re-exporta o erro de chave ausente do driver.
const Nil = redis.Nil

// Tempo de vida do cache subdomínio → empresa da vitrine pública.
const companyTTL = 24 * time.Hour

type Client struct {
	Client *redis.Client
}

// NewClient creates a new Redis client
func NewClient(cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{Client: client}, nil
}

// Get retrieves a value from Redis
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

// Set sets a value in Redis with expiration
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.Client.Set(ctx, key, value, expiration).Err()
}

// Delete removes keys from Redis
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

func companyKey(subdomain string) string {
	return fmt.Sprintf("company:subdomain:%s", subdomain)
}

// GetCompanyBySubdomain busca no cache a empresa de um subdomínio. O valor
// atravessa a camada de mapeamento de borda: um registro inválido é tratado
// como cache miss, nunca devolvido parcialmente.
func (c *Client) GetCompanyBySubdomain(ctx context.Context, subdomain string) (*models.Company, error) {
	raw, err := c.Get(ctx, companyKey(subdomain))
	if err != nil {
		return nil, err
	}

	var record models.Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, redis.Nil
	}

	company, err := models.MapCompany(record)
	if err != nil {
		return nil, redis.Nil
	}
	return company, nil
}

// SetCompanyBySubdomain guarda a empresa resolvida para um subdomínio.
func (c *Client) SetCompanyBySubdomain(ctx context.Context, company *models.Company) error {
	payload, err := json.Marshal(company)
	if err != nil {
		return err
	}
	return c.Set(ctx, companyKey(company.Subdomain), payload, companyTTL)
}

// InvalidateCompany remove a entrada de cache de um subdomínio. Chamado em
// toda escrita de configurações ou status da empresa.
func (c *Client) InvalidateCompany(ctx context.Context, subdomain string) error {
	return c.Delete(ctx, companyKey(subdomain))
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// SetSession registra uma sessão ativa (id → usuário) com expiração.
func (c *Client) SetSession(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	return c.Set(ctx, sessionKey(sessionID), userID, ttl)
}

// GetSession devolve o usuário dono de uma sessão ativa.
func (c *Client) GetSession(ctx context.Context, sessionID string) (string, error) {
	return c.Get(ctx, sessionKey(sessionID))
}

// DeleteSession invalida uma sessão.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.Delete(ctx, sessionKey(sessionID))
}

// Close closes the Redis client
func (c *Client) Close() error {
	return c.Client.Close()
}
