package controllers

import (
	"net/http"

	"invensys/app"
	"invensys/db"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserController struct{ *Srv }

func NewUserController(s *Srv) *UserController { return &UserController{Srv: s} }

// POST /api/users
func (uc *UserController) CreateUser(c *gin.Context) {
	var in struct {
		FirstName      string  `json:"firstName" binding:"required"`
		LastName       string  `json:"lastName" binding:"required"`
		Username       string  `json:"username" binding:"required"`
		Email          string  `json:"emailAddress" binding:"required,email"`
		Password       string  `json:"password" binding:"required,min=8"`
		IsAdmin        bool    `json:"isAdmin"`
		BusinessUnitID *string `json:"businessUnitId"`
		DepartmentID   *string `json:"departmentId"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	u, err := uc.Repo.CreateUser(c.Request.Context(), db.CreateUserInput{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Username:       in.Username,
		Email:          in.Email,
		Password:       in.Password,
		IsAdmin:        in.IsAdmin,
		BusinessUnitID: in.BusinessUnitID,
		DepartmentID:   in.DepartmentID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	uc.Log.Info("user created",
		zap.String("actor_id", app.ActorFrom(c).ID),
		zap.String("user_id", u.ID),
		zap.String("username", u.Username))
	c.JSON(http.StatusCreated, u)
}

// GET /api/users?active=true&username=ali
func (uc *UserController) ListUsers(c *gin.Context) {
	active, err := boolQuery(c, "active")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	users, err := uc.Repo.ListUsers(c.Request.Context(), db.UserFilter{IsActive: active, Username: c.Query("username")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"users": users})
}

// GET /api/users/:username
func (uc *UserController) GetUser(c *gin.Context) {
	user, err := uc.Repo.FindUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": user})
}

// PUT /api/users/:username/admin
func (uc *UserController) SetAdmin(c *gin.Context) {
	var in struct {
		IsAdmin *bool `json:"isAdmin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	u, err := uc.Repo.FindUserByUsername(ctx, c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	if u.ID == app.ActorFrom(c).ID && !*in.IsAdmin {
		badRequest(c, "cannot revoke your own admin rights")
		return
	}
	if err := uc.Repo.SetUserAdmin(ctx, u.ID, *in.IsAdmin); err != nil {
		respondError(c, err)
		return
	}
	u.IsAdmin = *in.IsAdmin
	c.JSON(http.StatusOK, app.H{"user": u})
}

// DELETE /api/users/:id
func (uc *UserController) DeleteUser(c *gin.Context) {
	id := c.Param("id")

	// 不允许删除自己，避免锁死
	if id == app.ActorFrom(c).ID {
		badRequest(c, "cannot delete yourself")
		return
	}
	outcome, err := uc.Repo.DeleteUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	// 撤销该用户的所有登录会话
	if err := uc.Sessions.RevokeAllForUser(c.Request.Context(), id); err != nil {
		uc.Log.Warn("revoke sessions", zap.String("user_id", id), zap.Error(err))
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "outcome": outcome})
}
