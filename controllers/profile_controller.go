package controllers

import (
	"strings"

	"mercadito/middleware"
	"mercadito/models"
	"mercadito/repositories"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	profiles repositories.ProfileStorage
}

func NewProfileController(profiles repositories.ProfileStorage) *ProfileController {
	return &ProfileController{profiles: profiles}
}

// @Summary Get user profile
// @Tags Profile
// @Produce json
// @Success 200 {object} models.UserProfile
// @Failure 404 {object} map[string]string
// @Router /profile [get]
func (ctrl *ProfileController) GetProfile(c *gin.Context) {
	user, err := ctrl.profiles.Read(c.Request.Context(), c.GetString(middleware.ProfileKey))
	if err != nil {
		c.JSON(503, gin.H{"error": "storage unavailable"})
		return
	}
	if user == nil {
		c.JSON(404, gin.H{"error": "Profile not found"})
		return
	}
	c.JSON(200, user)
}

// @Summary Update user profile
// @Tags Profile
// @Accept json
// @Produce json
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} map[string]string
// @Router /profile [put]
func (ctrl *ProfileController) UpdateProfile(c *gin.Context) {
	var user models.UserProfile
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(user.Email) == "" {
		c.JSON(400, gin.H{"error": "email is required"})
		return
	}

	if err := ctrl.profiles.Write(c.Request.Context(), c.GetString(middleware.ProfileKey), &user); err != nil {
		c.JSON(503, gin.H{"error": "storage unavailable"})
		return
	}
	c.JSON(200, user)
}
