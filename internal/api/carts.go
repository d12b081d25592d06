// carts.go

package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-backend/internal/apperr"
	"shop-backend/internal/cart"
	"shop-backend/internal/models"
)

func cartAndProduct(c *gin.Context) (cid, pid primitive.ObjectID, err error) {
	cid, err = apperr.ParseID("cart", c.Param("cid"))
	if err != nil {
		return cid, pid, err
	}
	pid, err = apperr.ParseID("product", c.Param("pid"))
	return cid, pid, err
}

func (h *handlers) listCarts(c *gin.Context) {
	carts, err := h.Carts.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, carts)
}

func (h *handlers) createCart(c *gin.Context) {
	view, err := h.Carts.Create(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *handlers) getCart(c *gin.Context) {
	cid, err := apperr.ParseID("cart", c.Param("cid"))
	if err != nil {
		writeError(c, err)
		return
	}
	view, err := h.Carts.Get(c.Request.Context(), cid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type quantityBody struct {
	Quantity any `json:"quantity"`
}

func (h *handlers) addProduct(c *gin.Context) {
	cid, pid, err := cartAndProduct(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var body quantityBody
	if err := bindJSON(c, &body, true); err != nil {
		writeError(c, err)
		return
	}
	view, err := h.Carts.AddProduct(c.Request.Context(), cid, pid, cast.ToInt(body.Quantity))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) removeProduct(c *gin.Context) {
	cid, pid, err := cartAndProduct(c)
	if err != nil {
		writeError(c, err)
		return
	}
	view, err := h.Carts.RemoveProduct(c.Request.Context(), cid, pid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) updateQuantity(c *gin.Context) {
	cid, pid, err := cartAndProduct(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var body quantityBody
	if err := bindJSON(c, &body, true); err != nil {
		writeError(c, err)
		return
	}
	view, err := h.Carts.UpdateQuantity(c.Request.Context(), cid, pid, body.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// replaceCart accepts either {"products": [...]} or a bare array of items.
func (h *handlers) replaceCart(c *gin.Context) {
	cid, err := apperr.ParseID("cart", c.Param("cid"))
	if err != nil {
		writeError(c, err)
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		writeError(c, apperr.Invalid("body", "must be valid JSON"))
		return
	}
	var items []cart.ItemInput
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0:
		writeError(c, apperr.Missing("products"))
		return
	case trimmed[0] == '[':
		err = json.Unmarshal(trimmed, &items)
	default:
		var body struct {
			Products []cart.ItemInput `json:"products"`
		}
		err = json.Unmarshal(trimmed, &body)
		items = body.Products
	}
	if err != nil {
		writeError(c, apperr.Invalid("products", "must be an array of {product, quantity}"))
		return
	}
	view, err := h.Carts.ReplaceAll(c.Request.Context(), cid, items)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) clearCart(c *gin.Context) {
	cid, err := apperr.ParseID("cart", c.Param("cid"))
	if err != nil {
		writeError(c, err)
		return
	}
	view, err := h.Carts.Clear(c.Request.Context(), cid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) purchase(c *gin.Context) {
	cid, err := apperr.ParseID("cart", c.Param("cid"))
	if err != nil {
		writeError(c, err)
		return
	}
	u, _ := currentUser(c)
	res, err := h.Carts.Purchase(c.Request.Context(), cid, u.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) listTickets(c *gin.Context) {
	u, _ := currentUser(c)
	purchaser := u.Email
	if u.Role == models.RoleAdmin {
		purchaser = ""
	}
	tickets, err := h.Carts.Tickets(c.Request.Context(), purchaser)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}
