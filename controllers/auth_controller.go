package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mediavault/mediavault/config"
	"github.com/mediavault/mediavault/models"
	"github.com/mediavault/mediavault/utils"
)

// AuthController handles account registration and login.
type AuthController struct {
	users    *models.IdentityStore
	tokens   utils.TokenManager
	tokenTTL time.Duration
}

// NewAuthController creates an AuthController.
func NewAuthController(users *models.IdentityStore, tokens utils.TokenManager, cfg config.AppConfig) *AuthController {
	return &AuthController{
		users:    users,
		tokens:   tokens,
		tokenTTL: time.Duration(cfg.TokenTTLHours) * time.Hour,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup registers a new user with the given username and password.
func (a *AuthController) Signup(ctx *gin.Context) {
	var req credentialsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		utils.Msg(ctx, http.StatusBadRequest, "Username and password required")
		return
	}

	user, err := a.users.CreateUser(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrUsernameTaken) {
			utils.Msg(ctx, http.StatusBadRequest, "Username already exists")
			return
		}
		if utils.Sugar != nil {
			utils.Sugar.Errorf("signup failed for %q: %v", req.Username, err)
		}
		utils.Msg(ctx, http.StatusInternalServerError, "Failed to create user")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"msg":      "Signup successful",
		"username": user.Username,
		"user_id":  user.ID,
	})
}

// Login checks credentials and returns a bearer token. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (a *AuthController) Login(ctx *gin.Context) {
	var req credentialsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		utils.Msg(ctx, http.StatusBadRequest, "Username and password required")
		return
	}

	user, err := a.users.VerifyCredentials(req.Username, req.Password)
	if err != nil {
		utils.Msg(ctx, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := a.tokens.Issue(user.ID, user.Username, a.tokenTTL)
	if err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Errorf("token issue failed for %q: %v", user.Username, err)
		}
		utils.Msg(ctx, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"id":           user.ID,
		"username":     user.Username,
	})
}
