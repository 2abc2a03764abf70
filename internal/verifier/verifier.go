package verifier

import (
	"context"

	"github.com/recipebox/recipe-service/internal/config"
	"github.com/recipebox/recipe-service/pkg/logger"
	"github.com/recipebox/recipe-service/pkg/middleware"
)

// New picks a verifier from configuration: Keycloak OIDC first, then the
// shared JWT secret, then the insecure verifier when explicitly allowed.
// It returns nil when nothing is configured.
func New(ctx context.Context, cfg *config.Config) (middleware.Verifier, error) {
	if issuer := cfg.Keycloak.Issuer(); issuer != "" {
		logger.Infof("auth: using OIDC issuer %s", issuer)
		v, err := NewOIDCVerifier(ctx, issuer, cfg.Keycloak.ClientID)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	if cfg.JWT.Secret != "" {
		logger.Infof("auth: using shared-secret JWT verification")
		v, err := NewHMACVerifier(cfg.JWT.Secret)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	if cfg.Auth.AllowInsecureToken {
		logger.Warnf("auth: ALLOW_INSECURE_TOKEN set, token signatures are NOT verified")
		return NewInsecureVerifier(), nil
	}
	return nil, nil
}
