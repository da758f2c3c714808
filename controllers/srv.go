// controllers/srv.go
package controllers

import (
	"net/http"
	"strings"
	"time"

	"invensys/app"
	"invensys/config"
	"invensys/db"
	"invensys/documents"
	"invensys/session"

	"go.uber.org/zap"
)

type Srv struct {
	Repo     *db.Repo
	Sessions session.Store
	Docs     *documents.Workflow
	Cfg      config.Config
	Log      *zap.Logger
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:     a.Repo,
		Sessions: a.Sessions,
		Docs:     a.Docs,
		Cfg:      a.Config,
		Log:      a.Log.With(zap.String("component", "controllers")),
	}
}

// --- helpers ---

// 统一设置业务会话 Cookie
func (s *Srv) setAppCookie(w http.ResponseWriter, token string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   strings.HasPrefix(s.Cfg.WebOrigin, "https://"),
		MaxAge:   int(maxAge / time.Second),
	})
}

func (s *Srv) clearAppCookie(w http.ResponseWriter) {
	s.setAppCookie(w, "", -time.Second)
}
