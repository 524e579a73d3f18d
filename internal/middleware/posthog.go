package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/cashbook_backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// untrackedPrefixes are never sent to PostHog.
var untrackedPrefixes = []string{"/health", "/swagger"}

// ledgerParams are route parameters promoted to top-level event properties,
// so events can be filtered per cashbook, entry or delete request.
var ledgerParams = []string{"cashbook_id", "entry_id", "request_id"}

// PosthogMiddleware creates a Gin middleware handler that tracks successful API calls with PostHog.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !posthogClient.IsInitialized() || untracked(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		// Only successful calls are product events; failures are in the logs.
		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}

		eventName := eventNameForRoute(c.Request.Method, c.FullPath())
		if eventName == "" {
			return
		}

		props := ledgerProperties(c)
		props["route"] = c.FullPath()
		props["status_code"] = c.Writer.Status()
		props["latency_ms"] = time.Since(start).Milliseconds()

		posthogClient.Enqueue(userID, eventName, props)
	}
}

// PosthogEvent sends a named ledger event, e.g. "entry_created", from a handler.
func PosthogEvent(c *gin.Context, posthogClient *utils.PosthogClientWrapper, eventName string, properties map[string]any) {
	if !posthogClient.IsInitialized() {
		return
	}

	userID, exists := GetUserIDFromContext(c)
	if !exists {
		return
	}

	props := ledgerProperties(c)
	for k, v := range properties {
		props[k] = v
	}

	posthogClient.Enqueue(userID, eventName, props)
}

// eventNameForRoute turns a route template into an event name. Parameter segments
// are dropped and the method is appended:
// "GET /api/v1/cashbooks/:cashbook_id/entries" -> "cashbooks_entries_get".
func eventNameForRoute(method, route string) string {
	if route == "" {
		return ""
	}
	var parts []string
	for _, seg := range strings.Split(route, "/") {
		switch {
		case seg == "", seg == "api", strings.HasPrefix(seg, ":"), strings.HasPrefix(seg, "*"):
			continue
		case len(seg) > 1 && seg[0] == 'v' && strings.Trim(seg[1:], "0123456789") == "":
			continue
		}
		parts = append(parts, strings.ReplaceAll(seg, "-", "_"))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "_") + "_" + strings.ToLower(method)
}

func ledgerProperties(c *gin.Context) map[string]any {
	props := map[string]any{"method": c.Request.Method}
	for _, key := range ledgerParams {
		if v := c.Param(key); v != "" {
			props[key] = v
		}
	}
	if requestID := c.Writer.Header().Get("X-Request-ID"); requestID != "" {
		props["request_trace_id"] = requestID
	}
	return props
}

func untracked(path string) bool {
	for _, prefix := range untrackedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
