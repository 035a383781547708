// Package cep resolves Brazilian postal codes through the ViaCEP API.
package cep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	ErrInvalidCEP  = errors.New("CEP deve conter 8 dígitos")
	ErrCEPNotFound = errors.New("CEP não encontrado")
)

// Address as returned by ViaCEP.
type Address struct {
	CEP         string `json:"cep"`
	Logradouro  string `json:"logradouro"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Localidade  string `json:"localidade"`
	UF          string `json:"uf"`
	Erro        Flag   `json:"erro,omitempty"`
}

// Flag is ViaCEP's not-found marker. It arrives as true or as "true"
// depending on the endpoint version.
type Flag bool

// UnmarshalJSON accepts a JSON boolean or a quoted boolean.
func (f *Flag) UnmarshalJSON(data []byte) error {
	switch strings.ToLower(strings.Trim(string(data), `"`)) {
	case "true":
		*f = true
	case "false", "", "null":
		*f = false
	default:
		return fmt.Errorf("valor inválido para erro: %s", data)
	}
	return nil
}

// Cache is the subset of the redis client used to memoize lookups.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) error
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
}

// Client queries ViaCEP. cache may be nil.
type Client struct {
	baseURL  string
	http     *http.Client
	cache    Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewClient creates a Client.
func NewClient(baseURL string, timeout time.Duration, cache Cache, cacheTTL time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Normalize strips punctuation and checks the CEP has 8 digits.
func Normalize(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '.' || r == ' ':
		default:
			return "", ErrInvalidCEP
		}
	}
	if b.Len() != 8 {
		return "", ErrInvalidCEP
	}
	return b.String(), nil
}

// Lookup resolves a CEP, consulting the cache first.
func (c *Client) Lookup(ctx context.Context, raw string) (*Address, error) {
	code, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	key := "cep:" + code
	if c.cache != nil {
		var cached Address
		if err := c.cache.GetJSON(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/json/", c.baseURL, code), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("falha ao consultar ViaCEP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return nil, ErrInvalidCEP
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ViaCEP respondeu HTTP %d", resp.StatusCode)
	}

	var addr Address
	if err := json.NewDecoder(resp.Body).Decode(&addr); err != nil {
		return nil, fmt.Errorf("resposta inválida do ViaCEP: %w", err)
	}
	if addr.Erro {
		return nil, ErrCEPNotFound
	}

	if c.cache != nil {
		if err := c.cache.SetJSON(ctx, key, addr, c.cacheTTL); err != nil {
			c.logger.Warn("falha ao gravar CEP em cache", zap.String("cep", code), zap.Error(err))
		}
	}
	return &addr, nil
}
