package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio-api/internal/core/auth"
	"portfolio-api/internal/domain"
	resp "portfolio-api/internal/transport/http/response"
)

const keyIdentity = "identity"

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// UserLookup 查不到用户时返回 (nil, nil)
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Identity 是通过鉴权的请求主体；角色取自用户表而不是令牌
type Identity struct {
	UserID    string
	Role      domain.Role
	TokenID   string
	ExpiresAt time.Time
	User      *domain.User
}

func IdentityFrom(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(keyIdentity)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok && id != nil
}

type Authenticator struct {
	Tokens TokenVerifier
	Users  UserLookup
	Deny   auth.Denylist // 可为空
	Log    *zap.Logger
}

var (
	errNoToken     = errors.New("no token")
	errRevoked     = errors.New("token revoked")
	errUnknownUser = errors.New("user not found")
	errBadRole     = errors.New("unknown role")
)

// RequireAuth 失败时 401；存储或吊销名单不可用时 500
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := a.resolve(c)
		if err != nil {
			authFailures.WithLabelValues(reason(err)).Inc()
			switch {
			case errors.Is(err, errNoToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error("Not authorized, no token"))
			case isAuthErr(err):
				c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error("Not authorized, token failed"))
			default:
				a.logger().Error("auth lookup failed", zap.String("rid", c.GetString(KeyRequestID)), zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, resp.Error("internal server error"))
			}
			return
		}
		c.Set(keyIdentity, id)
		c.Next()
	}
}

// OptionalAuth 任何失败都按匿名请求继续
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := a.resolve(c)
		switch {
		case err == nil:
			c.Set(keyIdentity, id)
		case !errors.Is(err, errNoToken) && !isAuthErr(err):
			a.logger().Warn("optional auth degraded to anonymous", zap.String("rid", c.GetString(KeyRequestID)), zap.Error(err))
		}
		c.Next()
	}
}

// Authorize 必须放在 RequireAuth 之后
func Authorize(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			authFailures.WithLabelValues("forbidden").Inc()
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Error("Not authorized to access this route"))
			return
		}
		for _, r := range roles {
			if id.Role == r {
				c.Next()
				return
			}
		}
		authFailures.WithLabelValues("forbidden").Inc()
		c.AbortWithStatusJSON(http.StatusForbidden, resp.Error("User role "+string(id.Role)+" is not authorized to access this route"))
	}
}

// resolve 在没有令牌时不访问任何存储
func (a *Authenticator) resolve(c *gin.Context) (*Identity, error) {
	tok, ok := bearer(c.GetHeader("Authorization"))
	if !ok {
		return nil, errNoToken
	}
	claims, err := a.Tokens.Verify(tok)
	if err != nil {
		return nil, err
	}
	ctx := c.Request.Context()
	if a.Deny != nil {
		revoked, err := a.Deny.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, errRevoked
		}
	}
	u, err := a.Users.FindByID(ctx, claims.UserID())
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errUnknownUser
	}
	role, ok := domain.ParseRole(string(u.Role))
	if !ok {
		return nil, errBadRole
	}
	return &Identity{
		UserID:    u.ID,
		Role:      role,
		TokenID:   claims.ID,
		ExpiresAt: claims.Expiry(),
		User:      u,
	}, nil
}

func (a *Authenticator) logger() *zap.Logger {
	if a.Log == nil {
		return zap.NewNop()
	}
	return a.Log
}

func bearer(h string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

func isAuthErr(err error) bool {
	return errors.Is(err, auth.ErrMalformed) ||
		errors.Is(err, auth.ErrInvalidSignature) ||
		errors.Is(err, auth.ErrExpired) ||
		errors.Is(err, errRevoked) ||
		errors.Is(err, errUnknownUser) ||
		errors.Is(err, errBadRole)
}

func reason(err error) string {
	switch {
	case errors.Is(err, errNoToken):
		return "no_token"
	case errors.Is(err, auth.ErrExpired):
		return "expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "bad_signature"
	case errors.Is(err, auth.ErrMalformed):
		return "malformed"
	case errors.Is(err, errRevoked):
		return "revoked"
	case errors.Is(err, errUnknownUser), errors.Is(err, errBadRole):
		return "unknown_user"
	}
	return "error"
}
