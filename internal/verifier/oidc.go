package verifier

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/recipebox/recipe-service/pkg/middleware"
)

// OIDCVerifier checks ID tokens against a discovered OIDC provider (Keycloak realm).
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the provider at issuer. ctx bounds discovery only.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	cfg := &oidc.Config{ClientID: clientID, SkipClientIDCheck: clientID == ""}
	return &OIDCVerifier{verifier: provider.Verifier(cfg)}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	return idToken, nil
}

// IssuerCheck reports whether the issuer's discovery document is reachable.
// It is registered as a readiness check when OIDC verification is configured.
func IssuerCheck(issuer string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if _, err := oidc.NewProvider(ctx, issuer); err != nil {
			return fmt.Errorf("oidc issuer %s: %w", issuer, err)
		}
		return nil
	}
}
