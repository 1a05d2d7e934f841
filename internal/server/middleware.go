package server

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/verlyx/hub/internal/companycontext"
	obscontext "github.com/verlyx/hub/internal/observability/context"
	"github.com/verlyx/hub/internal/observability/logger"
	"go.uber.org/zap"
)

const (
	HeaderCompany      = "X-Company-ID"
	contextUserIDKey   = "user_id"
	contextUserRoleKey = "user_role"

	rateLimitReasonClient = "client-rate"

	// Bodies larger than this are not inspected for a company id.
	maxPeekBodyBytes = 1 << 20
)

// AuthRequired validates the bearer access token and stores the caller in
// the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		principal, err := s.authsvc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := companycontext.WithUserID(c.Request.Context(), principal.UserID)
		ctx = obscontext.WithUserID(ctx, principal.UserID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextUserIDKey, principal.UserID.String())
		c.Set(contextUserRoleKey, principal.Role)
		c.Next()
	}
}

// CompanyContext resolves the active company from the X-Company-ID header,
// then the query string, then the JSON body.
func CompanyContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID, ok := companyIDFromRequest(c)
		if ok {
			ctx := companycontext.WithCompanyID(c.Request.Context(), companyID)
			ctx = obscontext.WithCompanyID(ctx, companyID.String())
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

func companyIDFromRequest(c *gin.Context) (snowflake.ID, bool) {
	if id, ok := companycontext.ParseID(c.GetHeader(HeaderCompany)); ok {
		return id, true
	}
	for _, key := range []string{"companyId", "myCompanyId"} {
		if id, ok := companycontext.ParseID(c.Query(key)); ok {
			return id, true
		}
	}
	return companyIDFromBody(c)
}

// companyIDFromBody reads the JSON body and restores it for the handler.
func companyIDFromBody(c *gin.Context) (snowflake.ID, bool) {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return 0, false
	}
	if !strings.Contains(c.ContentType(), "json") {
		return 0, false
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPeekBodyBytes+1))
	if err != nil {
		return 0, false
	}
	c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))
	if len(body) > maxPeekBodyBytes {
		return 0, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return 0, false
	}
	for _, key := range []string{"companyId", "myCompanyId", "my_company_id"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if id, ok := companycontext.ParseID(strings.Trim(string(raw), `"`)); ok {
			return id, true
		}
	}
	return 0, false
}

// RateLimit applies the per-client request budget. Authenticated callers are
// keyed by user id, everyone else by client IP.
func (s *Server) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		endpoint := normalizeRateLimitEndpoint(c)

		res, err := s.limiter.Allow(ctx, rateLimitKey(c))
		if err != nil {
			logger.FromContext(ctx).Warn("rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			logger.FromContext(ctx).Warn("rate limit exceeded",
				zap.String("reason", rateLimitReasonClient),
				zap.String("endpoint", endpoint),
			)
			s.obsMetrics.RecordRateLimitDenied(ctx, endpoint, rateLimitReasonClient)

			retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			AbortWithError(c, ErrRateLimited)
			return
		}

		s.obsMetrics.RecordRateLimitAllowed(ctx, endpoint)
		c.Next()
	}
}

func rateLimitKey(c *gin.Context) string {
	if userID, ok := companycontext.UserIDFromContext(c.Request.Context()); ok {
		return "user:" + userID.String()
	}
	return "ip:" + c.ClientIP()
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}

// CORS adapts rs/cors to gin. Preflight requests are answered here.
func CORS(origins []string) gin.HandlerFunc {
	allowed := origins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	handler := cors.New(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type", HeaderCompany, "X-Request-Id"},
		ExposedHeaders:   []string{"Retry-After", "X-Request-Id", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           600,
	})

	return func(c *gin.Context) {
		handler.HandlerFunc(c.Writer, c.Request)
		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}
