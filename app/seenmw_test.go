package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"invensys/clock"
	"invensys/config"
	"invensys/db/dbtest"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestMemSeenGateWindow(t *testing.T) {
	clk := clock.NewFixed(time.Unix(1000, 0))
	g := NewSeenGate(nil, clk, time.Minute)
	ctx := context.Background()

	if !g.Due(ctx, "u1") {
		t.Fatal("first call should be due")
	}
	if g.Due(ctx, "u1") {
		t.Fatal("second call inside the window should not be due")
	}
	if !g.Due(ctx, "u2") {
		t.Fatal("other users have their own window")
	}
	clk.Advance(time.Minute)
	if !g.Due(ctx, "u1") {
		t.Fatal("due again once the window passed")
	}
}

func TestTouchLastSeen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo, clk := dbtest.New(t, false)
	u := dbtest.User(t, repo, "alice")

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("userID", c.GetHeader("X-User")) })
	r.Use(TouchLastSeen(repo, NewSeenGate(nil, clk, time.Minute), zap.NewNop()))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	hit := func(path string) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-User", u.ID)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	seen := func() *time.Time {
		got, err := repo.FindUserByID(context.Background(), u.ID)
		if err != nil {
			t.Fatal(err)
		}
		return got.LastSeenAt
	}

	hit("/boom")
	if seen() != nil {
		t.Fatal("failed request touched last_seen_at")
	}
	hit("/ok")
	first := seen()
	if first == nil || !first.Equal(dbtest.Epoch) {
		t.Fatalf("LastSeenAt = %v, want %v", first, dbtest.Epoch)
	}

	clk.Advance(30 * time.Second)
	hit("/ok")
	if got := seen(); !got.Equal(*first) {
		t.Fatalf("LastSeenAt moved inside the throttle window: %v", got)
	}
	clk.Advance(time.Minute)
	hit("/ok")
	if got := seen(); !got.Equal(dbtest.Epoch.Add(90 * time.Second)) {
		t.Fatalf("LastSeenAt = %v after the window", got)
	}
}

func TestCORSConfig(t *testing.T) {
	c := corsConfig(configWithOrigins("https://a.example.com", "http://localhost:5173"))
	if !c.AllowCredentials || c.AllowAllOrigins || len(c.AllowOrigins) != 2 {
		t.Fatalf("config = %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}

	wild := corsConfig(configWithOrigins("*"))
	if !wild.AllowAllOrigins || wild.AllowCredentials || len(wild.AllowOrigins) != 0 {
		t.Fatalf("wildcard config = %+v", wild)
	}
	if err := wild.Validate(); err != nil {
		t.Fatal(err)
	}
}

func configWithOrigins(origins ...string) config.Config {
	return config.Config{WebOrigin: origins[0], CORSOrigins: origins}
}
