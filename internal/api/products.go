// products.go

package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"shop-backend/internal/apperr"
	"shop-backend/internal/catalog"
)

func (h *handlers) listProducts(c *gin.Context) {
	page, err := h.Catalog.GetPaginated(c.Request.Context(), catalog.ListQuery{
		Limit:   c.Query("limit"),
		Page:    c.Query("page"),
		Query:   c.Query("query"),
		Sort:    c.Query("sort"),
		BaseURL: c.Request.URL.Path,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *handlers) getProduct(c *gin.Context) {
	id, err := apperr.ParseID("product", c.Param("pid"))
	if err != nil {
		writeError(c, err)
		return
	}
	p, err := h.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) createProduct(c *gin.Context) {
	var in catalog.CreateInput
	if err := bindJSON(c, &in, false); err != nil {
		writeError(c, err)
		return
	}
	p, err := h.Catalog.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) updateProduct(c *gin.Context) {
	id, err := apperr.ParseID("product", c.Param("pid"))
	if err != nil {
		writeError(c, err)
		return
	}
	raw := map[string]any{}
	if err := bindJSON(c, &raw, false); err != nil {
		writeError(c, err)
		return
	}
	p, err := h.Catalog.Update(c.Request.Context(), id, raw)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) deleteProduct(c *gin.Context) {
	id, err := apperr.ParseID("product", c.Param("pid"))
	if err != nil {
		writeError(c, err)
		return
	}
	p, err := h.Catalog.Remove(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// streamProducts pushes the current listing, then every published listing, as
// server-sent events until the client goes away.
func (h *handlers) streamProducts(c *gin.Context) {
	ch, cancel := h.Hub.Subscribe()
	defer cancel()

	initial, err := h.Catalog.ListAll(c.Request.Context(), 0)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent("products", initial)
	c.Writer.Flush()

	c.Stream(func(io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case list, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("products", list)
			return true
		}
	})
}
