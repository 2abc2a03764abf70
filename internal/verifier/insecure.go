package verifier

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/recipebox/recipe-service/pkg/middleware"
)

// claimsToken exposes a decoded claim set through middleware.Token.
type claimsToken struct {
	claims jwt.MapClaims
}

func (t *claimsToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// InsecureVerifier accepts any well-formed JWT without checking its signature.
// Local development only; enabled with ALLOW_INSECURE_TOKEN.
type InsecureVerifier struct {
	parser *jwt.Parser
}

func NewInsecureVerifier() *InsecureVerifier {
	return &InsecureVerifier{parser: jwt.NewParser()}
}

func (v *InsecureVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	if strings.Count(raw, ".") != 2 {
		return nil, errors.New("invalid token format")
	}
	claims := jwt.MapClaims{}
	if _, _, err := v.parser.ParseUnverified(raw, claims); err != nil {
		return nil, err
	}
	return &claimsToken{claims: claims}, nil
}
