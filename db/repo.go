package db

import (
	"context"
	"fmt"
	"strings"

	"invensys/clock"
	"invensys/lifecycle"
	"invensys/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	DB     *gorm.DB
	Vocab  *lifecycle.Vocabulary
	Policy lifecycle.Policy
	Clock  clock.Clock
	Log    *zap.Logger
}

func NewRepo(db *gorm.DB, vocab *lifecycle.Vocabulary, policy lifecycle.Policy, clk clock.Clock, log *zap.Logger) *Repo {
	return &Repo{DB: db, Vocab: vocab, Policy: policy, Clock: clk, Log: log.With(zap.String("component", "repo"))}
}

// Users

func (r *Repo) TouchUserLogin(ctx context.Context, userID, ip string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_at": r.Clock.Now(),
			"last_seen_at":  r.Clock.Now(),
			"login_count":   gorm.Expr("COALESCE(login_count, 0) + 1"),
			"last_login_ip": ip,
		}).Error
}

func (r *Repo) TouchUserSeen(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen_at", r.Clock.Now()).Error
}

// 按 ID 查
func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (r *Repo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", strings.ToLower(strings.TrimSpace(username))).First(&u).Error; err != nil {
		return nil, translate(err, "user "+username)
	}
	return &u, nil
}

// VerifyPassword returns the user only for an active account with a matching
// password. Every failure is reported as ErrUnauthorized.
func (r *Repo) VerifyPassword(ctx context.Context, username, password string) (*models.User, error) {
	u, err := r.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("bad credentials: %w", ErrUnauthorized)
	}
	if !u.IsActive || u.PasswordHash == "" {
		return nil, fmt.Errorf("bad credentials: %w", ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("bad credentials: %w", ErrUnauthorized)
	}
	return u, nil
}

type CreateUserInput struct {
	FirstName      string
	LastName       string
	Username       string
	Email          string
	Password       string
	IsAdmin        bool
	BusinessUnitID *string
	DepartmentID   *string
}

func (r *Repo) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("username %s already exists: %w", username, ErrConflict)
	}
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("email %s already exists: %w", email, ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		ID:             uuid.NewString(),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Username:       username,
		Email:          email,
		PasswordHash:   string(hash),
		IsActive:       true,
		IsAdmin:        in.IsAdmin,
		BusinessUnitID: in.BusinessUnitID,
		DepartmentID:   in.DepartmentID,
	}
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, translate(err, "user")
	}
	return u, nil
}

type UserFilter struct {
	IsActive *bool
	Username string
}

func (r *Repo) ListUsers(ctx context.Context, f UserFilter) ([]models.User, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{}).Order("created_at DESC")
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if s := strings.TrimSpace(f.Username); s != "" {
		q = q.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UserRemoval reports what DeleteUser did.
type UserRemoval string

const (
	UserDeleted     UserRemoval = "deleted"
	UserDeactivated UserRemoval = "deactivated"
)

// DeleteUser never discards allocation history. A user holding a laptop is
// rejected; a user with only closed allocations is deactivated; anyone else
// is deleted.
func (r *Repo) DeleteUser(ctx context.Context, id string) (UserRemoval, error) {
	var outcome UserRemoval
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&u, "id = ?", id).Error; err != nil {
			return translate(err, "user")
		}
		var active, total int64
		if err := tx.Model(&models.Allocation{}).Where("user_id = ? AND is_active", id).Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return fmt.Errorf("user %s still holds %d laptop(s), return them first: %w", u.Username, active, ErrConflict)
		}
		if err := tx.Model(&models.Allocation{}).Where("user_id = ? OR allocated_by = ? OR returned_by = ?", id, id, id).Count(&total).Error; err != nil {
			return err
		}
		if total > 0 {
			outcome = UserDeactivated
			return tx.Model(&models.User{}).Where("id = ?", id).Update("is_active", false).Error
		}
		outcome = UserDeleted
		return tx.Delete(&models.User{ID: id}).Error
	})
	if err != nil {
		return "", err
	}
	r.Log.Info("user removed", zap.String("user_id", id), zap.String("outcome", string(outcome)))
	return outcome, nil
}
