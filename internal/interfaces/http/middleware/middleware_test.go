package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/optommarket/backend/internal/config"
	"github.com/optommarket/backend/internal/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestIsOriginAllowed(t *testing.T) {
	allowed := []string{"https://optommarket.uz", "*.optommarket.uz"}
	cases := map[string]bool{
		"https://optommarket.uz":       true,
		"HTTPS://OPTOMMARKET.UZ":       true,
		"https://admin.optommarket.uz": true,
		"https://evil.uz":              false,
		"":                             false,
	}
	for origin, want := range cases {
		if got := isOriginAllowed(origin, allowed); got != want {
			t.Fatalf("isOriginAllowed(%q) = %v, want %v", origin, got, want)
		}
	}
	if !isOriginAllowed("http://any.example", []string{"*"}) {
		t.Fatalf("wildcard must allow every origin")
	}
}

func TestLanguage(t *testing.T) {
	cases := []struct {
		query, header, want string
	}{
		{"", "", LangUz},
		{"ru", "", LangRu},
		{"RU", "uz", LangRu},
		{"en", "ru-RU,ru;q=0.9", LangRu},
		{"", "en-US,uz;q=0.5", LangUz},
		{"", "de", LangUz},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?lang="+tc.query, nil)
		if tc.header != "" {
			c.Request.Header.Set("Accept-Language", tc.header)
		}
		if got := Language(c); got != tc.want {
			t.Fatalf("Language(lang=%q, %q) = %q, want %q", tc.query, tc.header, got, tc.want)
		}
	}
}

func TestCartSession(t *testing.T) {
	cfg := &config.Config{Business: config.BusinessConfig{
		CartSessionHeader: "X-Session-Id",
		CartSessionCookie: "cart_session",
		CartSessionTTL:    time.Hour,
	}}
	r := gin.New()
	r.Use(CartSession(cfg))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetSessionID(c)) })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	issued := rec.Header().Get(SessionHeader)
	if issued == "" || rec.Body.String() != issued {
		t.Fatalf("expected a new session id, got %q / %q", issued, rec.Body.String())
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Fatalf("a new session must be written to a cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "cart_session", Value: issued})
	if rec := serve(r, req); rec.Body.String() != issued {
		t.Fatalf("cookie session must be reused, got %q", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Session-Id", "from-header")
	req.AddCookie(&http.Cookie{Name: "cart_session", Value: issued})
	if rec := serve(r, req); rec.Body.String() != "from-header" {
		t.Fatalf("header wins over cookie, got %q", rec.Body.String())
	}
}

func TestLocalRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(2, nil, logger.Discard()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil)); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected 429 with Retry-After, got %d", rec.Code)
	}
}

type fakeCounter struct {
	hits int64
	err  error
}

func (f *fakeCounter) Hit(context.Context, string, time.Duration) (int64, error) {
	f.hits++
	return f.hits, f.err
}

func TestSharedRateLimit(t *testing.T) {
	counter := &fakeCounter{}
	r := gin.New()
	r.Use(RateLimit(1, counter, logger.Discard()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	if rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil)); rec.Code != http.StatusOK {
		t.Fatalf("first request must pass, got %d", rec.Code)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "ru")
	if rec := serve(r, req); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request must be limited, got %d", rec.Code)
	}

	counter.err = errors.New("redis down")
	if rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil)); rec.Code != http.StatusOK {
		t.Fatalf("a failing counter lets requests through, got %d", rec.Code)
	}
}

func TestRequestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(RequestSizeLimit(4))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.ContentLength = 10
	if rec := serve(r, req); rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
}
