package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"livebait-directory/middleware"
	"livebait-directory/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler authenticates the single configured admin account.
type AuthHandler struct {
	AdminEmail        string
	AdminPasswordHash string
	Issuer            *utils.TokenIssuer
	Log               logrus.FieldLogger
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if h.AdminEmail == "" || h.AdminPasswordHash == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Admin login is not configured"})
		return
	}

	emailOK := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(req.Email)),
		[]byte(strings.ToLower(h.AdminEmail)),
	) == 1
	// The hash is always checked so a wrong email costs the same time.
	passErr := bcrypt.CompareHashAndPassword([]byte(h.AdminPasswordHash), []byte(req.Password))
	if !emailOK || passErr != nil {
		h.Log.WithField("client_ip", c.ClientIP()).Warn("Failed admin login")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.Issuer.GenerateToken(h.AdminEmail, utils.RoleAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"email": h.AdminEmail,
			"role":  utils.RoleAdmin,
		},
	})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	email, _ := c.Get(middleware.ContextEmail)
	role, _ := c.Get(middleware.ContextRole)
	c.JSON(http.StatusOK, gin.H{"email": email, "role": role})
}
