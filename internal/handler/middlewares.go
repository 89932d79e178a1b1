package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/permission"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("已处理请求", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // 这里如果用 slog 的话会很乱
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// tokenFromRequest 优先读取 cookie，其次读取 Authorization 头
func (h *Handler) tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(h.config.JWT.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(bearer)
	}
	return ""
}

// parseToken 校验外部认证服务签发的令牌，返回其中的用户 ID
func (h *Handler) parseToken(tokenString string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if h.config.JWT.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(h.config.JWT.Issuer))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(h.config.JWT.Secret), nil
	}, opts...)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("令牌缺少 sub")
	}
	return claims.Subject, nil
}

func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := h.tokenFromRequest(r)
		if tokenString == "" {
			h.errorResponse(w, r, "用户未登录")
			return
		}

		sub, err := h.parseToken(tokenString)
		if err != nil {
			h.errorResponse(w, r, "无效的令牌")
			return
		}

		ctx := context.WithValue(r.Context(), SubCtxKey, sub)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// optionalAuth 允许匿名访问，但携带了令牌时令牌必须有效
func (h *Handler) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := h.tokenFromRequest(r)
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		sub, err := h.parseToken(tokenString)
		if err != nil {
			h.errorResponse(w, r, "无效的令牌")
			return
		}

		ctx := context.WithValue(r.Context(), SubCtxKey, sub)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// actor 加载当前用户并解析有效权限，匿名请求得到零值 Actor
func (h *Handler) actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subString, ok := r.Context().Value(SubCtxKey).(string)
		if !ok {
			ctx := context.WithValue(r.Context(), ActorCtx, domain.Actor{})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		sub, err := strconv.ParseInt(subString, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "无效的令牌")
			return
		}

		myInfo, err := h.store.GetUserByID(r.Context(), sub)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				h.errorResponse(w, r, "个人信息不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), MyInfoCtx, myInfo)
		ctx = context.WithValue(ctx, ActorCtx, permission.ActorOf(myInfo))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func actorFrom(r *http.Request) domain.Actor {
	actor, _ := r.Context().Value(ActorCtx).(domain.Actor)
	return actor
}

func myInfoFrom(r *http.Request) *domain.User {
	myInfo, _ := r.Context().Value(MyInfoCtx).(*domain.User)
	return myInfo
}

func (h *Handler) preventInactiveUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		myInfo := myInfoFrom(r)
		if myInfo != nil && !myInfo.IsActive {
			h.errorResponse(w, r, "您的账号已停用")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequiredPermission 要求当前用户至少拥有其中一个权限，开发者总是通过
func (h *Handler) RequiredPermission(perms ...domain.Permission) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := actorFrom(r)
			for _, p := range perms {
				if actor.Can(p) {
					next.ServeHTTP(w, r)
					return
				}
			}
			h.rejected(w, r, domain.ErrPermissionDenied)
		})
	}
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) userInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := idParam(r)
		if err != nil {
			h.errorResponse(w, r, "用户ID无效")
			return
		}

		user, err := h.store.GetUserByID(r.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				h.rejected(w, r, fmt.Errorf("用户不存在: %w", err))
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), UserInfoCtx, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) shiftTemplate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		templateID, err := idParam(r)
		if err != nil {
			h.errorResponse(w, r, "班次ID无效")
			return
		}

		st, err := h.store.GetShiftTemplate(r.Context(), templateID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				h.rejected(w, r, fmt.Errorf("班次不存在: %w", err))
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), ShiftTemplateCtx, st)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) course(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		courseID, err := idParam(r)
		if err != nil {
			h.errorResponse(w, r, "课程ID无效")
			return
		}

		c, err := h.store.GetCourse(r.Context(), courseID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				h.rejected(w, r, fmt.Errorf("课程不存在: %w", err))
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), CourseCtx, c)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.config.RateLimit.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		if !h.limiter.allow(clientIP(r)) {
			h.writeJSON(w, r, http.StatusTooManyRequests, Response{
				Success: false,
				Message: "请求过于频繁，请稍后再试",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
