package console_api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/BearBump/PetCafe/internal/integrations/cafeapi"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v4"
)

type accountKey struct{}

func AccountFromContext(ctx context.Context) string {
	v, _ := ctx.Value(accountKey{}).(string)
	return v
}

// accountFromToken reads the account id claim without verifying the
// signature; the backend checks the token on every forwarded call.
func accountFromToken(raw string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return ""
	}
	for _, k := range []string{"accountId", "account_id", "sub"} {
		if v, ok := claims[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Session puts the caller's bearer token and account id on the request context.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var account string
		if tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && tok != "" {
			ctx = cafeapi.WithToken(ctx, tok)
			account = accountFromToken(tok)
		}
		if account == "" {
			account = strings.TrimSpace(r.Header.Get("X-Account-ID"))
		}
		if account != "" {
			ctx = context.WithValue(ctx, accountKey{}, account)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
