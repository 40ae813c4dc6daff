package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lawcomply/lawcomply-backend/internal/http/response"
	"github.com/lawcomply/lawcomply-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /auth/register
// body: { "name": "...", "email": "...", "password": "..." }
func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err, "registration_failed")
		return
	}
	res, err := ah.authService.Register(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "registration_failed")
		return
	}
	response.RespondCreated(c, res)
}

// POST /auth/login
// body: { "email": "...", "password": "..." }
func (ah *AuthHandler) Login(c *gin.Context) {
	var req services.LoginInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err, "login_failed")
		return
	}
	res, err := ah.authService.Login(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "login_failed")
		return
	}
	response.RespondOK(c, gin.H{
		"token":      res.Token,
		"name":       res.Name,
		"email":      res.Email,
		"role":       res.Role,
		"expires_in": int(ah.authService.GetAccessTTL().Seconds()),
	})
}
