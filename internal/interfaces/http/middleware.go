package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/application/authz"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

const callerKey = "caller"

// TokenVerifier turns a bearer token into the caller it identifies
type TokenVerifier interface {
	Verify(token string) (entity.Caller, error)
}

// loggingMiddleware logs one line per request
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if caller, exists := c.Get(callerKey); exists {
			fields = append(fields, zap.Int64("user_id", caller.(entity.Caller).UserID))
		}
		s.logger.Info("HTTP request", fields...)
	}
}

// corsMiddleware allows the configured browser origins
func (s *Server) corsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(s.config.AllowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = s.config.AllowedOrigins
	}
	return cors.New(cfg)
}

// authenticate resolves the bearer token into a Caller
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if len(header) <= 7 || !strings.EqualFold(header[:7], "Bearer ") {
			fail(c, http.StatusUnauthorized, "missing or invalid token")
			return
		}

		caller, err := s.tokens.Verify(strings.TrimSpace(header[7:]))
		if err != nil {
			s.logger.Debug("Token rejected", zap.Error(err))
			fail(c, http.StatusUnauthorized, "missing or invalid token")
			return
		}

		if err := s.services.Users.CheckActive(c.Request.Context(), caller); err != nil {
			s.logger.Info("Account refused", zap.Int64("user_id", caller.UserID), zap.Error(err))
			writeError(c, s.logger, err)
			return
		}

		c.Set(callerKey, caller)
		c.Next()
	}
}

// authorize is the single role gate evaluated before a handler runs
func (s *Server) authorize(op authz.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := callerFrom(c)
		if !authz.Allowed(caller.Role, op) {
			s.logger.Info("Operation denied",
				zap.Int64("user_id", caller.UserID),
				zap.String("role", string(caller.Role)),
				zap.String("operation", string(op)))
			fail(c, http.StatusForbidden, "forbidden")
			return
		}
		c.Next()
	}
}

func callerFrom(c *gin.Context) entity.Caller {
	if v, exists := c.Get(callerKey); exists {
		if caller, isCaller := v.(entity.Caller); isCaller {
			return caller
		}
	}
	return entity.Caller{}
}
