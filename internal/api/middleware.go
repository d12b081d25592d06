// middleware.go

package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"shop-backend/internal/apperr"
	"shop-backend/internal/identity"
	"shop-backend/internal/logging"
	"shop-backend/internal/metrics"
	"shop-backend/internal/models"
)

const (
	requestIDHeader = "X-Request-Id"
	userKey         = "user"
)

// requestContext gives every request an id and a logger carrying it.
func requestContext(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(requestIDHeader, rid)
		logger := base.With(zap.String("request_id", rid))
		c.Request = c.Request.WithContext(logging.ContextWithLogger(c.Request.Context(), logger))
		c.Next()
	}
}

// accessLog logs and counts each request once the handler chain has run.
func accessLog(rec *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		rec.HTTPRequest(c.Request.Method, route, strconv.Itoa(status), elapsed.Seconds())
		logging.FromContext(c.Request.Context()).Info("http_request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Float64("latency_ms", float64(elapsed.Microseconds())/1000.0),
		)
	}
}

// authenticate resolves the token from the cookie, or from a Bearer header,
// and stores the user on the context.
func authenticate(idn *identity.Service, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(cookieName)
		if token == "" {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			}
		}
		if token == "" {
			writeError(c, apperr.ErrUnauthenticated)
			return
		}
		u, err := idn.Current(c.Request.Context(), token)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(userKey, u)
		c.Request = c.Request.WithContext(logging.ContextWithLogger(c.Request.Context(),
			logging.FromContext(c.Request.Context()).With(zap.String("user_id", u.ID.Hex()))))
		c.Next()
	}
}

func currentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}

func requireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := currentUser(c)
		if !ok {
			writeError(c, apperr.ErrUnauthenticated)
			return
		}
		if u.Role != role {
			writeError(c, apperr.ErrForbidden)
			return
		}
		c.Next()
	}
}

// requireOwnCart lets the request through only when :cid is the caller's cart.
// With adminRead, administrators pass as well.
func requireOwnCart(adminRead bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := currentUser(c)
		if !ok {
			writeError(c, apperr.ErrUnauthenticated)
			return
		}
		if adminRead && u.Role == models.RoleAdmin {
			c.Next()
			return
		}
		if u.Cart.IsZero() || u.Cart.Hex() != c.Param("cid") {
			writeError(c, apperr.ErrForbidden)
			return
		}
		c.Next()
	}
}
