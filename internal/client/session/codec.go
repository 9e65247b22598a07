package session

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/marketplace/storefront/internal/core/domain"
	"github.com/marketplace/storefront/internal/core/ports"
)

// Codec reads bearer tokens issued by the marketplace API. It never verifies
// signatures; the server does that on every request.
type Codec struct {
	parser *jwt.Parser
}

func NewCodec() *Codec {
	return &Codec{parser: jwt.NewParser(jwt.WithJSONNumber())}
}

// Decode extracts the claims of token. Claims of an unexpected type are left
// zero instead of failing the decode.
func (c *Codec) Decode(token string) (domain.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Claims{}, fmt.Errorf("decode token: %w", domain.ErrMalformedToken)
	}

	mc := jwt.MapClaims{}
	if _, _, err := c.parser.ParseUnverified(token, mc); err != nil {
		return domain.Claims{}, fmt.Errorf("decode token: %w: %v", domain.ErrMalformedToken, err)
	}

	var claims domain.Claims
	if sub, err := mc.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	claims.Token = stringClaim(mc, "token")
	claims.Username = stringClaim(mc, "username")
	claims.UserID = intClaim(mc, "idUser")
	claims.Role = domain.Role(stringClaim(mc, "rol"))
	return claims, nil
}

// BundleFromToken builds the credential bundle for a freshly issued token.
func BundleFromToken(dec ports.TokenDecoder, token string) (domain.CredentialBundle, error) {
	claims, err := dec.Decode(token)
	if err != nil {
		return domain.CredentialBundle{}, err
	}
	return domain.CredentialBundle{
		Token:    token,
		Username: claims.Username,
		UserID:   claims.UserID,
		Role:     claims.Role,
	}, nil
}

func stringClaim(mc jwt.MapClaims, key string) string {
	switch v := mc[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func intClaim(mc jwt.MapClaims, key string) int64 {
	switch v := mc[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil && f == math.Trunc(f) {
			return int64(f)
		}
	case float64:
		if v == math.Trunc(v) {
			return int64(v)
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
