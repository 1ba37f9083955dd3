package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "parley/pkg/domain"
	dErrors "parley/pkg/domain-errors"
	"parley/pkg/platform/httputil"
	"parley/pkg/requestcontext"
)

// JWTValidator validates bearer tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims is what the middleware needs from a validated token.
type JWTClaims struct {
	Address id.Address
	JTI     string
}

// HMACValidator validates HS256 tokens whose subject is the caller's account
// address.
type HMACValidator struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
}

func NewHMACValidator(secret, issuer, audience string) *HMACValidator {
	return &HMACValidator{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		leeway:   30 * time.Second,
	}
}

func (v *HMACValidator) ValidateToken(tokenString string) (*JWTClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	addr, err := id.ParseAddress(claims.Subject)
	if err != nil {
		return nil, errors.New("token subject is not an account address")
	}
	return &JWTClaims{Address: addr, JTI: claims.ID}, nil
}

// Sign issues a token for addr. Used by the CLI and tests.
func (v *HMACValidator) Sign(addr id.Address, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   addr.String(),
		Issuer:    v.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if v.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// GetCaller retrieves the authenticated account address from the context.
func GetCaller(ctx context.Context) id.Address {
	return requestcontext.Caller(ctx)
}

// RequireAuth rejects requests without a valid bearer token. When
// allowed is non-empty the token's address must be one of them; a node only
// serves its own accounts.
func RequireAuth(validator JWTValidator, logger *slog.Logger, allowed ...id.Address) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			if len(allowed) > 0 && !contains(allowed, claims.Address) {
				logger.WarnContext(ctx, "forbidden - account not served by this node",
					"address", claims.Address,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "account not served here"))
				return
			}

			ctx = requestcontext.WithCaller(ctx, claims.Address)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contains(addrs []id.Address, a id.Address) bool {
	for _, x := range addrs {
		if x == a {
			return true
		}
	}
	return false
}
