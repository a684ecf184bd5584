package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/sierra-health/medequip-api/config"
	"github.com/sierra-health/medequip-api/logger"
	"go.uber.org/zap"
)

// AdminScope is the token scope required on every admin route
const AdminScope = "admin"

const (
	subjectKey = "admin_subject"
	claimsKey  = "validated_claims"
)

// CustomClaims contains the scope claim of an access token
type CustomClaims struct {
	Scope string `json:"scope"`
}

// Validate satisfies validator.CustomClaims; scopes are checked per route by RequireScope
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// HasScope checks whether the space separated scope claim contains expectedScope
func (c CustomClaims) HasScope(expectedScope string) bool {
	for _, scope := range strings.Fields(c.Scope) {
		if scope == expectedScope {
			return true
		}
	}
	return false
}

// AdminAuth returns the middleware chain guarding admin routes. Without AUTH0_DOMAIN the
// routes are left open, which is only meant for local development and tests.
func AdminAuth(cfg *config.Config) ([]gin.HandlerFunc, error) {
	if !cfg.AuthEnabled() {
		logger.Log.Warn("AUTH0_DOMAIN not set, admin routes are NOT protected")
		return []gin.HandlerFunc{func(c *gin.Context) { c.Next() }}, nil
	}
	ensure, err := EnsureValidToken(cfg)
	if err != nil {
		return nil, err
	}
	return []gin.HandlerFunc{ensure, RequireScope(AdminScope)}, nil
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
func EnsureValidToken(cfg *config.Config) (gin.HandlerFunc, error) {
	issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to parse the issuer url: %w", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Auth0Audience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt validator: %w", err)
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Warn(r.Context(), "Rejected admin token", zap.Error(err))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`)); writeErr != nil {
			logger.Log.Error("Failed to write error response", zap.Error(writeErr))
		}
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		passed := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			token, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
			if !ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, authErrorBody("MISSING_CLAIMS", "Could not retrieve token claims"))
				return
			}
			SetClaims(c, token)
			c.Request = r
			passed = true
			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}, nil
}

// SetClaims stores validated token claims on the request context
func SetClaims(c *gin.Context, claims *validator.ValidatedClaims) {
	c.Set(subjectKey, claims.RegisteredClaims.Subject)
	c.Set(claimsKey, claims)
}

// GetSubject returns the sub claim of the admin token on this request
func GetSubject(c *gin.Context) (string, error) {
	subject, exists := c.Get(subjectKey)
	if !exists {
		return "", &AuthError{Code: "MISSING_SUBJECT", Message: "Token subject not found in context"}
	}

	subjectStr, ok := subject.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_SUBJECT", Message: "Token subject is not a string"}
	}

	return subjectStr, nil
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(claimsKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// RequireScope is a middleware that checks if the token has a specific scope
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := GetClaims(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, authErrorBody("MISSING_CLAIMS", "Could not retrieve token claims"))
			return
		}

		customClaims, ok := claims.CustomClaims.(*CustomClaims)
		if !ok || !customClaims.HasScope(scope) {
			c.AbortWithStatusJSON(http.StatusForbidden, authErrorBody("INSUFFICIENT_SCOPE", "Insufficient permissions to access this resource"))
			return
		}

		c.Next()
	}
}

func authErrorBody(code, message string) gin.H {
	return gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
