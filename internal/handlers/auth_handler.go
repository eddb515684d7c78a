package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-application-tracker/internal/dtos"
	"github.com/justsurfingit/job-application-tracker/internal/middleware"
	"github.com/justsurfingit/job-application-tracker/internal/services"
)

type AuthHandler struct {
	Accounts *services.AccountService
	TokenTTL time.Duration
}

func NewAuthHandler(accounts *services.AccountService, ttl time.Duration) *AuthHandler {
	return &AuthHandler{Accounts: accounts, TokenTTL: ttl}
}

// SignUp is POST /auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req dtos.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required."})
		return
	}

	acct, token, err := h.Accounts.SignUp(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	h.setCookie(c, token)
	c.JSON(http.StatusCreated, dtos.AuthResponse{Token: token, Account: dtos.NewProfileResponse(acct)})
}

// SignIn is POST /auth/signin
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req dtos.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required."})
		return
	}

	acct, token, err := h.Accounts.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	h.setCookie(c, token)
	c.JSON(http.StatusOK, dtos.AuthResponse{Token: token, Account: dtos.NewProfileResponse(acct)})
}

// SignOut is POST /auth/signout. Tokens are stateless, so this only clears
// the cookie.
func (h *AuthHandler) SignOut(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me is GET /me
func (h *AuthHandler) Me(c *gin.Context) {
	acct, err := h.Accounts.Profile(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewProfileResponse(acct))
}

// UpdateMe is PUT /me
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req dtos.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	acct, err := h.Accounts.UpdateProfile(c.Request.Context(), middleware.AccountID(c), req.DisplayName, req.AvatarURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewProfileResponse(acct))
}

func (h *AuthHandler) setCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("token", token, int(h.TokenTTL.Seconds()), "/", "", false, true)
}
