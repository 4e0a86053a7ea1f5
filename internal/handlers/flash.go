package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"portfolio-backend/pkg/logger"
)

const (
	flashSessionName = "portfolio_flash"

	// Cookies are capped near 4KB, so echoed input is shortened.
	maxOldValueRunes = 600
)

// Flash is the one-shot state carried across a form redirect.
type Flash struct {
	Success string            `json:"success,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Old     map[string]string `json:"old,omitempty"`
}

// FlashStore keeps flash state in a signed cookie session.
type FlashStore struct {
	store sessions.Store
}

func NewFlashStore(secret string, secure bool) *FlashStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   10 * 60,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
	return &FlashStore{store: store}
}

func (f *FlashStore) Set(c *gin.Context, flash Flash) {
	session, err := f.store.Get(c.Request, flashSessionName)
	if err != nil {
		// A tampered or stale cookie still yields a usable new session.
		logger.FromContext(c.Request.Context()).WithError(err).Debug("Discarding unreadable flash session")
	}

	for key, value := range flash.Old {
		if runes := []rune(value); len(runes) > maxOldValueRunes {
			flash.Old[key] = string(runes[:maxOldValueRunes])
		}
	}

	encoded, err := json.Marshal(flash)
	if err != nil {
		logger.Error(err, "Failed to encode flash", nil)
		return
	}

	session.AddFlash(string(encoded))
	if err := session.Save(c.Request, c.Writer); err != nil {
		logger.Error(err, "Failed to save flash session", nil)
	}
}

// Pop returns and clears the pending flash, or nil when there is none.
func (f *FlashStore) Pop(c *gin.Context) *Flash {
	session, err := f.store.Get(c.Request, flashSessionName)
	if err != nil {
		return nil
	}

	flashes := session.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	if err := session.Save(c.Request, c.Writer); err != nil {
		logger.Error(err, "Failed to clear flash session", nil)
	}

	var merged *Flash
	for _, raw := range flashes {
		text, ok := raw.(string)
		if !ok {
			continue
		}
		var flash Flash
		if err := json.Unmarshal([]byte(text), &flash); err != nil {
			continue
		}
		merged = &flash
	}
	return merged
}
