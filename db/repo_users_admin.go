// db/repo_users_admin.go
package db

import (
	"context"
	"errors"

	"invensys/models"

	"go.uber.org/zap"
)

func (r *Repo) SetUserAdmin(ctx context.Context, userID string, isAdmin bool) error {
	res := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_admin", isAdmin)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("user")
	}
	return nil
}

func (r *Repo) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("is_admin = ?", true).
		Count(&n).Error
	return n, err
}

// EnsureAdmin creates the bootstrap superuser when no admin exists yet.
// It reports whether a user was created.
func (r *Repo) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	n, err := r.CountAdmins(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	u, err := r.CreateUser(ctx, CreateUserInput{
		FirstName: "System",
		LastName:  "Admin",
		Username:  username,
		Email:     email,
		Password:  password,
		IsAdmin:   true,
	})
	if errors.Is(err, ErrConflict) {
		// 用户名已存在但不是管理员：直接提权
		existing, ferr := r.FindUserByUsername(ctx, username)
		if ferr != nil {
			return false, ferr
		}
		return false, r.SetUserAdmin(ctx, existing.ID, true)
	}
	if err != nil {
		return false, err
	}
	r.Log.Info("bootstrap admin created", zap.String("username", u.Username))
	return true, nil
}
