package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/internal/app/service"
	apperrors "github.com/jerseylab/jerseylab-backend/internal/errors"
	"github.com/jerseylab/jerseylab-backend/internal/middleware"
)

type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ListUsers GET /api/v1/admin/users
func (ctrl *UserController) ListUsers(c *gin.Context) {
	users, err := ctrl.userService.ListUsers()
	if err != nil {
		apperrors.InternalError(c, "Failed to fetch users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}

// UpdateRole PUT /api/v1/admin/users/:id/role
func (ctrl *UserController) UpdateRole(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "role is required")
		return
	}

	user, err := ctrl.userService.UpdateRole(actorID, userID, model.UserRole(req.Role))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	middleware.GetLoggerFromContext(c).Info("User role changed", map[string]interface{}{
		"actor_id": actorID,
		"user_id":  userID,
		"role":     user.Role,
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "Role updated successfully",
		"user":    user,
	})
}

// DeleteUser DELETE /api/v1/admin/users/:id
func (ctrl *UserController) DeleteUser(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.userService.DeleteUser(actorID, userID); err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (ctrl *UserController) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		apperrors.NotFound(c, apperrors.UserNotFound, "User not found")
	case errors.Is(err, service.ErrInvalidRole):
		apperrors.BadRequest(c, apperrors.AuthzInvalidRole, "Unknown role")
	case errors.Is(err, service.ErrCannotModifySelf):
		apperrors.Forbidden(c, "You cannot change your own account")
	default:
		middleware.GetLoggerFromContext(c).Error("User admin request failed", err)
		apperrors.InternalError(c, "")
	}
}
