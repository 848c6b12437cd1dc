package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"linkpulse/config"
	"linkpulse/internal/domain"
	"linkpulse/internal/service"

	"github.com/gin-gonic/gin"
)

// RedirectHandler serves GET /r/:code. It must answer with a redirect in every
// case: tracking problems degrade to an untracked redirect, never to an error
// page in the visitor's face.
type RedirectHandler struct {
	cfg *config.TrackingConfig
	svc *service.TrackingService
}

func NewRedirectHandler(cfg *config.TrackingConfig, svc *service.TrackingService) *RedirectHandler {
	return &RedirectHandler{cfg: cfg, svc: svc}
}

func (h *RedirectHandler) Redirect(c *gin.Context) {
	code := c.Param("code")
	requestCookieID, _ := c.Cookie(h.cfg.CookieName)

	meta := service.ClickMeta{
		Referrer:    c.Request.Referer(),
		UserAgent:   c.Request.UserAgent(),
		ClientIP:    c.ClientIP(),
		UTMSource:   c.Query("utm_source"),
		UTMMedium:   c.Query("utm_medium"),
		UTMCampaign: c.Query("utm_campaign"),
		Device:      deviceFromUA(c.Request.UserAgent()),
	}

	result, err := h.svc.TrackClick(code, requestCookieID, meta, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.Redirect(http.StatusFound, h.cfg.RedirectFallbackURL)
			return
		}
		log.Printf("[Redirect] tracking failed for code=%s: %v", code, err)
		c.Redirect(http.StatusFound, h.cfg.RedirectFallbackURL)
		return
	}

	maxAge := h.cfg.DefaultCookieDays * 24 * 60 * 60
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, result.CookieID, maxAge, "/", "", false, true)
	c.Redirect(http.StatusFound, result.RedirectURL)
}

func deviceFromUA(ua string) string {
	switch {
	case ua == "":
		return ""
	case strings.Contains(ua, "iPad") || strings.Contains(ua, "Tablet"):
		return "tablet"
	case strings.Contains(ua, "Mobi") || strings.Contains(ua, "Android") || strings.Contains(ua, "iPhone"):
		return "mobile"
	default:
		return "desktop"
	}
}
