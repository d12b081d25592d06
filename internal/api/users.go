// users.go

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shop-backend/internal/apperr"
	"shop-backend/internal/identity"
	"shop-backend/internal/models"
)

func (h *handlers) listUsers(c *gin.Context) {
	users, err := h.Identity.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]models.PublicUser, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) getUser(c *gin.Context) {
	id, err := apperr.ParseID("user", c.Param("uid"))
	if err != nil {
		writeError(c, err)
		return
	}
	u, err := h.Identity.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u.Public())
}

func (h *handlers) updateUser(c *gin.Context) {
	id, err := apperr.ParseID("user", c.Param("uid"))
	if err != nil {
		writeError(c, err)
		return
	}
	var in identity.UpdateInput
	if err := bindJSON(c, &in, false); err != nil {
		writeError(c, err)
		return
	}
	u, err := h.Identity.Update(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u.Public())
}

func (h *handlers) deleteUser(c *gin.Context) {
	id, err := apperr.ParseID("user", c.Param("uid"))
	if err != nil {
		writeError(c, err)
		return
	}
	u, err := h.Identity.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u.Public())
}
