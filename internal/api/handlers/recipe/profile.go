package recipe

import (
	"net/http"

	"dish-lens/internal/api/handlers"
	"dish-lens/internal/api/middleware"
	"dish-lens/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// HandleGetProfile GET /profile
func (h *Handler) HandleGetProfile(c *gin.Context) {
	profile, err := h.svc.GetProfile(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// HandleUpdateProfile PUT /profile
func (h *Handler) HandleUpdateProfile(c *gin.Context) {
	session := middleware.SessionFrom(c)
	if session == nil {
		handlers.RespondError(c, common.ErrLoginToProfile)
		return
	}

	var req common.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	profile, err := h.svc.UpdateProfile(c.Request.Context(), session, req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"profile": profile,
	})
}

// HandleSavedRecipes GET /profile/recipes，匿名時為空清單
func (h *Handler) HandleSavedRecipes(c *gin.Context) {
	recipes, err := h.svc.SavedRecipes(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recipes": recipes,
		"count":   len(recipes),
	})
}
