package recipe

import (
	"net/http"

	"dish-lens/internal/api/handlers"
	"dish-lens/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// HandleGetRecipe GET /recipes/:id
func (h *Handler) HandleGetRecipe(c *gin.Context) {
	recipe, err := h.svc.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// HandleToggleSave POST /recipes/:id/save
func (h *Handler) HandleToggleSave(c *gin.Context) {
	saved, err := h.svc.ToggleSave(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"saved":   saved,
	})
}

// HandleIsSaved GET /recipes/:id/saved，匿名時為 false
func (h *Handler) HandleIsSaved(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"saved": h.svc.IsSaved(c.Request.Context(), middleware.SessionFrom(c), c.Param("id")),
	})
}
