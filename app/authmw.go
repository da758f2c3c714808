package app

import (
	"fmt"
	"net/http"
	"strings"

	"invensys/db"
	"invensys/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const AppSessionCookie = "app_session"

const actorKey = "actor"

// SessionToken reads the bearer token from the Authorization header, falling
// back to the session cookie.
func SessionToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	if ck, err := c.Request.Cookie(AppSessionCookie); err == nil {
		return ck.Value
	}
	return ""
}

func AuthRequired(sessions session.Store, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized", "message": "missing session"})
			return
		}
		as, err := sessions.Get(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized", "message": "invalid session"})
			return
		}

		// 确认用户仍存在且未停用
		u, err := repo.FindUserByID(c.Request.Context(), as.UserID)
		if err != nil || !u.IsActive {
			_ = sessions.Delete(c.Request.Context(), token)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized", "message": "account unavailable"})
			return
		}
		c.Set("userID", u.ID)
		c.Set("username", u.Username)
		c.Set("isAdmin", u.IsAdmin)
		c.Set(actorKey, db.Actor{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin})

		c.Next()
	}
}

// ActorFrom returns the caller set by AuthRequired.
func ActorFrom(c *gin.Context) db.Actor {
	v, _ := c.Get(actorKey)
	a, _ := v.(db.Actor)
	return a
}

// AdminOnly records every refused attempt in the audit log before the 403.
func AdminOnly(repo *db.Repo, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor.ID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized", "message": "missing session"})
			return
		}
		if actor.IsAdmin {
			c.Next()
			return
		}
		err := repo.RecordAudit(c.Request.Context(), db.AuditInput{
			ActorID: actor.ID,
			Action:  db.ActionUnauthorizedAccess,
			Subject: "route",
			Details: fmt.Sprintf("%s: %s %s", actor.Username, c.Request.Method, c.FullPath()),
		})
		if err != nil {
			log.Error("audit unauthorized access", zap.String("actor_id", actor.ID), zap.Error(err))
		}
		c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden", "message": "administrator privileges required"})
	}
}
