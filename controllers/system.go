package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type SystemController struct {
	started    time.Time
	showErrors bool
	log        zerolog.Logger
	now        func() time.Time
}

// NewSystemController serves the pages that sit outside auth. showErrors
// puts panic details on the error page.
func NewSystemController(showErrors bool, log zerolog.Logger) *SystemController {
	return &SystemController{
		started:    time.Now(),
		showErrors: showErrors,
		log:        log,
		now:        time.Now,
	}
}

func (sc *SystemController) Home(c *gin.Context) {
	if currentSession(c) != nil {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	render(c, http.StatusOK, "index.html", "Secure Auth System", nil)
}

func (sc *SystemController) Health(c *gin.Context) {
	now := sc.now()
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": now.UTC().Format(time.RFC3339Nano),
		"uptime":    now.Sub(sc.started).Seconds(),
	})
}

func (sc *SystemController) NotFound(c *gin.Context) {
	render(c, http.StatusNotFound, "404.html", "Page Not Found", nil)
}

// Recover renders the error page for panics in later handlers.
func (sc *SystemController) Recover(c *gin.Context, recovered interface{}) {
	sc.log.Error().
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Interface("panic", recovered).
		Msg("handler panicked")

	data := gin.H{}
	if sc.showErrors {
		data["error"] = fmt.Sprint(recovered)
	}
	render(c, http.StatusInternalServerError, "error.html", "Server Error", data)
	c.Abort()
}
