package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"libroteca/internal/services"
)

// AuthController serves registration, login and logout.
type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register.
func (ctl *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := ctl.auth.Register(services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, gin.H{"id": id})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (ctl *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := ctl.auth.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, result)
}

// Logout handles POST /api/auth/logout. The token to revoke comes from
// the Authorization header.
func (ctl *AuthController) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || token == "" {
		respondErr(c, http.StatusUnauthorized, "token required")
		return
	}

	if err := ctl.auth.Logout(token); err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "session closed")
}
