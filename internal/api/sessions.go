// sessions.go

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shop-backend/internal/apperr"
	"shop-backend/internal/identity"
)

func (h *handlers) register(c *gin.Context) {
	var in identity.RegisterInput
	if err := bindJSON(c, &in, false); err != nil {
		writeError(c, err)
		return
	}
	u, err := h.Identity.Register(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u.Public())
}

func (h *handlers) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := bindJSON(c, &req, false); err != nil {
		writeError(c, err)
		return
	}
	u, token, err := h.Identity.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	maxAge := int(h.Identity.Tokens().TTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.CookieName, token, maxAge, "/", "", h.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"user": u.Public(), "token": token})
}

func (h *handlers) current(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		writeError(c, apperr.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, u.Public())
}

func (h *handlers) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.CookieName, "", -1, "/", "", h.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
