package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chirp-server/models"
)

var (
	jwtSecret []byte
	tokenTTL  = 72 * time.Hour
)

// InitToken 设置签名密钥和有效期
func InitToken(secret string, expireHours int) {
	jwtSecret = []byte(secret)
	if expireHours > 0 {
		tokenTTL = time.Duration(expireHours) * time.Hour
	}
}

// GenerateToken 为用户签发 JWT
func GenerateToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(tokenTTL).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken 校验 JWT 并返回用户ID
func ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrNotAuthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrNotAuthorized
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrNotAuthorized
	}
	return userID, nil
}
