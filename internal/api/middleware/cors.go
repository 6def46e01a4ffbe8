package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
)

// CORSConfig represents CORS configuration
type CORSConfig struct {
	// AllowOrigins lists exact origins. Ignored when AllowAll is set.
	AllowOrigins []string
	// AllowAll accepts any origin. Credentials are never allowed in this mode.
	AllowAll bool
	MaxAge   int
}

// Options converts the configuration into go-chi/cors options.
func (c CORSConfig) Options() cors.Options {
	opts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         c.MaxAge,
	}
	if c.AllowAll {
		opts.AllowedOrigins = []string{"*"}
		opts.AllowCredentials = false
	} else {
		opts.AllowedOrigins = c.AllowOrigins
		opts.AllowCredentials = true
	}
	return opts
}

// CORS adapts the go-chi/cors handler to gin. Preflight requests are answered
// here and never reach route handlers.
func CORS(config CORSConfig) gin.HandlerFunc {
	handler := cors.New(config.Options())

	return func(c *gin.Context) {
		passed := false
		handler.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)

		if !passed {
			c.Abort()
		}
	}
}
