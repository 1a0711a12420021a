package v1

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mattn/go-nulltype"
	"github.com/saferoute-app/saferoute-server/internal/db/models"
	"github.com/saferoute-app/saferoute-server/internal/server/apimodels"
	"github.com/saferoute-app/saferoute-server/internal/storage"
	"gorm.io/gorm"
)

const maxAvatarBytes = 5 << 20

func GETMe(c *gin.Context) {
	user, ok := c.MustGet("user").(*models.User)
	if !ok {
		slog.Error("Failed to get user from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func PATCHMe(c *gin.Context) {
	user, ok := c.MustGet("user").(*models.User)
	if !ok {
		slog.Error("Failed to get user from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	db, ok := c.MustGet("db").(*gorm.DB)
	if !ok {
		slog.Error("Failed to get db from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}

	var req apimodels.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user.DisplayName = req.DisplayName
	if err := db.Model(user).Update("display_name", req.DisplayName).Error; err != nil {
		slog.Error("Failed to update profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// PUTMeHome saves the home location. The account password is re-verified so
// an unattended session cannot silently change where "go home" leads.
func PUTMeHome(c *gin.Context) {
	user, ok := c.MustGet("user").(*models.User)
	if !ok {
		slog.Error("Failed to get user from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	db, ok := c.MustGet("db").(*gorm.DB)
	if !ok {
		slog.Error("Failed to get db from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}

	var req apimodels.SetHomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if !user.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Password is incorrect"})
		return
	}

	user.HomeLat = nulltype.NullFloat64Of(req.Lat)
	user.HomeLng = nulltype.NullFloat64Of(req.Lng)
	user.HomeAddress = nulltype.NullStringOf(req.Address)
	if err := db.Save(user).Error; err != nil {
		slog.Error("Failed to save home location", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func DELETEMeHome(c *gin.Context) {
	user, ok := c.MustGet("user").(*models.User)
	if !ok {
		slog.Error("Failed to get user from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	db, ok := c.MustGet("db").(*gorm.DB)
	if !ok {
		slog.Error("Failed to get db from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}

	err := db.Model(user).Updates(map[string]any{
		"home_lat":     nil,
		"home_lng":     nil,
		"home_address": nil,
	}).Error
	if err != nil {
		slog.Error("Failed to clear home location", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": 1})
}

func POSTMeAvatar(c *gin.Context) {
	user, ok := c.MustGet("user").(*models.User)
	if !ok {
		slog.Error("Failed to get user from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	db, ok := c.MustGet("db").(*gorm.DB)
	if !ok {
		slog.Error("Failed to get db from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	uploads, ok := c.MustGet("storage").(storage.Storage)
	if !ok {
		slog.Error("Failed to get storage from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
		return
	}
	if fileHeader.Size > maxAvatarBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Avatar is too large"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		slog.Error("Failed to open avatar upload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	defer src.Close()

	name := fmt.Sprintf("avatar_%d", user.ID)
	dst, err := uploads.Create(name)
	if err != nil {
		slog.Error("Failed to create avatar file", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		slog.Error("Failed to store avatar", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	if err := dst.Close(); err != nil {
		slog.Error("Failed to store avatar", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}

	if err := db.Model(user).Update("avatar_path", name).Error; err != nil {
		slog.Error("Failed to save avatar path", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": 1})
}

func GETMeAvatar(c *gin.Context) {
	user, ok := c.MustGet("user").(*models.User)
	if !ok {
		slog.Error("Failed to get user from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	uploads, ok := c.MustGet("storage").(storage.Storage)
	if !ok {
		slog.Error("Failed to get storage from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	if user.AvatarPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
		return
	}

	file, err := uploads.Open(user.AvatarPath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes))
	if err != nil {
		slog.Error("Failed to read avatar", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}
