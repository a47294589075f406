package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"libroteca/internal/services"
)

// UsersController serves the user management endpoints.
type UsersController struct {
	users *services.UserService
}

func NewUsersController(users *services.UserService) *UsersController {
	return &UsersController{users: users}
}

// List handles GET /api/users.
func (ctl *UsersController) List(c *gin.Context) {
	users, err := ctl.users.List()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, users)
}

// GetByID handles GET /api/users/:id.
func (ctl *UsersController) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := ctl.users.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Create handles POST /api/users.
func (ctl *UsersController) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := ctl.users.Create(services.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, user)
}

type updateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Update handles PUT /api/users/:id.
func (ctl *UsersController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := ctl.users.Update(id, services.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

// Delete handles DELETE /api/users/:id.
func (ctl *UsersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctl.users.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "user deleted")
}

// Count handles GET /api/users/count.
func (ctl *UsersController) Count(c *gin.Context) {
	count, err := ctl.users.Count()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondPage(c, nil, count)
}
