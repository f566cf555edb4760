package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
)

// SecureOptions sets the usual hardening headers. Content-Security-Policy is
// left off because the pages use inline styles.
func SecureOptions(isDevelopment bool) secure.Options {
	return secure.Options{
		IsDevelopment:           isDevelopment,
		ContentTypeNosniff:      true,
		CustomFrameOptionsValue: "SAMEORIGIN",
		BrowserXssFilter:        true,
		ReferrerPolicy:          "no-referrer",
		STSSeconds:              15552000,
		STSIncludeSubdomains:    true,
	}
}

func Secure(opts secure.Options) gin.HandlerFunc {
	s := secure.New(opts)
	return func(c *gin.Context) {
		if err := s.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		// Process may have redirected (SSL, allowed hosts).
		if status := c.Writer.Status(); status > 300 && status < 399 {
			c.Abort()
		}
	}
}
