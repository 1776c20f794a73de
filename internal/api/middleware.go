package api

import (
	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/service"
	"alcyxob/gym-tracker/internal/tracker"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Context key for the authenticated user's ObjectID
const ContextUserIDKey = "userID"

// --- Pipeline ---

// Stage is one named step every request passes through before routing.
type Stage struct {
	Name    string
	Handler gin.HandlerFunc
}

// Pipeline flattens stages into handlers in the order given.
func Pipeline(stages ...Stage) []gin.HandlerFunc {
	handlers := make([]gin.HandlerFunc, 0, len(stages))
	for _, s := range stages {
		if s.Handler != nil {
			handlers = append(handlers, s.Handler)
		}
	}
	return handlers
}

// DefaultStages is tracking, recovery, header normalization and the request deadline.
// The tracker wraps recovery so a recovered panic is recorded with its 500 status.
func DefaultStages(logger *zap.Logger, t *tracker.Tracker, requestTimeout time.Duration) []Stage {
	return []Stage{
		{Name: "tracker", Handler: TrackerMiddleware(t)},
		{Name: "recovery", Handler: RecoveryMiddleware(logger)},
		{Name: "cors", Handler: CORSMiddleware()},
		{Name: "headers", Handler: HeaderMiddleware()},
		{Name: "timeout", Handler: TimeoutMiddleware(requestTimeout)},
	}
}

// --- Request tracking ---

// TrackerMiddleware hands a record of every request to t once the response
// status is known. It never rejects or alters the request.
func TrackerMiddleware(t *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if t == nil {
			c.Next()
			return
		}
		received := time.Now().UTC()
		defer func() {
			t.Track(domain.RequestRecord{
				Method:     c.Request.Method,
				Path:       c.Request.URL.Path,
				Route:      c.FullPath(),
				ClientIP:   c.ClientIP(),
				UserAgent:  c.Request.UserAgent(),
				Status:     c.Writer.Status(),
				Latency:    time.Since(received),
				ReceivedAt: received,
			})
		}()
		c.Next()
	}
}

// RecoveryMiddleware logs a panicking request and answers it with an internal_error body.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return ginzap.CustomRecoveryWithZap(logger, true, func(c *gin.Context, _ any) {
		abortWithError(c, service.KindInternal, "internal server error")
	})
}

// --- Headers ---

// CORSMiddleware allows any origin; credentials travel in the Authorization header.
func CORSMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	})
}

// responseHeaders are set on every response before the handler runs.
var responseHeaders = map[string]string{
	"Content-Type":           "application/json; charset=utf-8",
	"Cache-Control":          "no-store",
	"X-Content-Type-Options": "nosniff",
}

// HeaderMiddleware sets the fixed response headers. Handlers may still
// override them, e.g. the metrics endpoint.
func HeaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for k, v := range responseHeaders {
			h.Set(k, v)
		}
		c.Next()
	}
}

// --- Deadline ---

// TimeoutMiddleware bounds the downstream calls a request may make.
func TimeoutMiddleware(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// --- Authentication ---

// AuthMiddleware rejects requests without a live session and stores the
// session user in the context.
func AuthMiddleware(authService service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortWithError(c, service.KindAuthentication, "Authorization header format must be Bearer {token}")
			return
		}

		userID, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// sessionUserID returns the user set by AuthMiddleware.
func sessionUserID(c *gin.Context) primitive.ObjectID {
	if id, ok := c.Get(ContextUserIDKey); ok {
		if oid, ok := id.(primitive.ObjectID); ok {
			return oid
		}
	}
	return primitive.NilObjectID
}

// userIDOrSession resolves an optional userId input, defaulting to the session user.
func userIDOrSession(c *gin.Context, hex string) primitive.ObjectID {
	if hex == "" {
		return sessionUserID(c)
	}
	return objectID(hex)
}

func noRoute(c *gin.Context) {
	abortWithError(c, service.KindNotFound, "no route for "+c.Request.Method+" "+c.Request.URL.Path)
}

func noMethod(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed, ErrorResponse{Error: ErrorDetail{
		Kind:    service.KindValidation,
		Message: c.Request.Method + " is not allowed on " + c.Request.URL.Path,
	}})
}
