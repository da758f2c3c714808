package controllers

import (
	"net/http"
	"time"

	"invensys/app"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// POST /api/login
func (ac *AuthController) Login(c *gin.Context) {
	var in struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	u, err := ac.Repo.VerifyPassword(ctx, in.Username, in.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := ac.Repo.TouchUserLogin(ctx, u.ID, c.ClientIP()); err != nil {
		ac.Log.Warn("touch login", zap.String("user_id", u.ID), zap.Error(err)) // 不阻塞
	}
	token, as, err := ac.Sessions.Create(ctx, u.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	ac.setAppCookie(c.Writer, token, ac.Cfg.SessionTTL)
	ac.Log.Info("user logged in", zap.String("user_id", u.ID), zap.String("username", u.Username))
	c.JSON(http.StatusOK, app.H{
		"token":     token,
		"tokenType": "bearer",
		"expiresAt": time.Unix(as.ExpiresAt, 0).UTC(),
		"user":      u,
	})
}

// POST /api/logout
func (ac *AuthController) Logout(c *gin.Context) {
	if token := app.SessionToken(c); token != "" {
		_ = ac.Sessions.Delete(c.Request.Context(), token)
	}
	ac.clearAppCookie(c.Writer)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/whoami
func (ac *AuthController) WhoAmI(c *gin.Context) {
	u, err := ac.Repo.FindUserByID(c.Request.Context(), app.ActorFrom(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}
