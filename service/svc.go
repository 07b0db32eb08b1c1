package service

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"time"

	cache "github.com/Code-Hex/go-generics-cache"
	"github.com/membervault/api/config"
	"github.com/membervault/api/domain"
	"go.uber.org/fx"
)

const roleNameCacheTTL = 5 * time.Minute

type Params struct {
	fx.In
	Repo       domain.Repository
	KeyConfig  config.KeyConfig
	AuthConfig config.AuthConfig
}

func NewService(params Params) (domain.Service, error) {
	jwtPrivateKey, err := initRSAPrivateKey(params.KeyConfig.RsaPrivateKeyPem)
	if err != nil {
		return nil, fmt.Errorf("initialize RSA private key: %w", err)
	}

	svc := &Service{
		Repo:          params.Repo,
		jwtPrivateKey: jwtPrivateKey,
		tokenTTL:      time.Duration(params.AuthConfig.TokenTTLHours) * time.Hour,
		roleNames:     cache.New[string, string](),
	}

	return svc, nil
}

type Service struct {
	Repo          domain.Repository
	jwtPrivateKey *rsa.PrivateKey
	tokenTTL      time.Duration
	roleNames     *cache.Cache[string, string]
}

func initRSAPrivateKey(pemStr string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block containing private key")
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		// Try PKCS8 format
		keyInterface, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %v", err)
		}
		var ok bool
		key, ok = keyInterface.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("private key is not RSA")
		}
	}
	return key, nil
}
