// Package auth 驗證外部驗證服務（Supabase）簽發的 JWT，並轉成使用者會話
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dish-lens/internal/infrastructure/config"
	"dish-lens/internal/pkg/common"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSecret 沒有設定 JWT secret，所有請求都視為匿名
	ErrNoSecret = errors.New("jwt secret is not configured")
	// ErrInvalidToken token 無法驗證
	ErrInvalidToken = errors.New("invalid token")
)

// UserMetadata Supabase 的 user_metadata
type UserMetadata struct {
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Claims Supabase access token 內容
type Claims struct {
	Email        string       `json:"email,omitempty"`
	UserMetadata UserMetadata `json:"user_metadata"`
	jwt.RegisteredClaims
}

// Validator 以 HS256 secret 驗證 token
type Validator struct {
	secret []byte
	issuer string
}

// NewValidator 創建 token 驗證器
func NewValidator(cfg config.AuthConfig) *Validator {
	return &Validator{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer}
}

// Enabled 是否能驗證 token
func (v *Validator) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

// ValidateToken 驗證 token 並回傳會話
func (v *Validator) ValidateToken(tokenString string) (*common.Session, error) {
	if !v.Enabled() {
		return nil, ErrNoSecret
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}

	return &common.Session{
		UserID:    claims.Subject,
		Email:     claims.Email,
		FullName:  claims.UserMetadata.FullName,
		AvatarURL: claims.UserMetadata.AvatarURL,
	}, nil
}

// IssueToken 以相同 secret 簽發 token，供本地開發與測試使用
func (v *Validator) IssueToken(s common.Session, ttl time.Duration) (string, error) {
	if !v.Enabled() {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := Claims{
		Email:        s.Email,
		UserMetadata: UserMetadata{FullName: s.FullName, AvatarURL: s.AvatarURL},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

type sessionKey struct{}

// WithSession 將會話放入 context
func WithSession(ctx context.Context, s *common.Session) context.Context {
	if s == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext 取出會話，匿名時回傳 nil
func SessionFromContext(ctx context.Context) *common.Session {
	s, _ := ctx.Value(sessionKey{}).(*common.Session)
	return s
}
