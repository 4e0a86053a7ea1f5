package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/service"
	"portfolio-backend/pkg/logger"
	"portfolio-backend/pkg/navigation"
)

// Page is the payload every public page renders from.
type Page struct {
	Component string            `json:"component"`
	Props     interface{}       `json:"props"`
	Nav       []navigation.Item `json:"nav"`
	Flash     *Flash            `json:"flash,omitempty"`
}

func renderPage(c *gin.Context, flashes *FlashStore, component string, props interface{}) {
	page := Page{Component: component, Props: props, Nav: navigation.Main(c.Request.URL.Path)}
	if flashes != nil {
		page.Flash = flashes.Pop(c)
	}
	c.JSON(http.StatusOK, page)
}

// respondError maps service errors onto HTTP statuses for JSON endpoints.
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var inUseErr *service.InUseError

	switch {
	case errors.As(err, &validationErr):
		status := http.StatusUnprocessableEntity
		if errors.Is(err, service.ErrRateLimited) {
			status = http.StatusTooManyRequests
		}
		c.JSON(status, gin.H{"error": "validation failed", "fields": validationErr.Fields})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &inUseErr):
		c.JSON(http.StatusConflict, gin.H{"error": inUseErr.Error(), "count": inUseErr.Count})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
	default:
		logger.FromContext(c.Request.Context()).WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func parseID(c *gin.Context, name string) (uint, bool) {
	return parseIDParam(c, "id", name)
}

func parseIDParam(c *gin.Context, param, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " id"})
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return value
}

// redirectBack sends a 303 to the same-site path the form was posted from,
// or fallback when the referer is missing or foreign.
func redirectBack(c *gin.Context, fallback, fragment string) {
	target := fallback
	if ref, err := url.Parse(c.Request.Referer()); err == nil && ref.Path != "" && strings.HasPrefix(ref.Path, "/") && (ref.Host == "" || ref.Host == c.Request.Host) {
		target = ref.Path
		if ref.RawQuery != "" {
			target += "?" + ref.RawQuery
		}
	}
	if fragment != "" {
		target += "#" + fragment
	}
	c.Redirect(http.StatusSeeOther, target)
}
