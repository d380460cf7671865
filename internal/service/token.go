package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ServiceTokenManager выпускает и проверяет сервисные JWT для endpoint'а
// /notif: бэкенд фаучета подписывает запросы к боту этим токеном.
type ServiceTokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewServiceTokenManager создаёт менеджер сервисных токенов.
func NewServiceTokenManager(secret string, ttl time.Duration) *ServiceTokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ServiceTokenManager{secret: []byte(secret), ttl: ttl}
}

// Generate выпускает токен для указанного сервиса-вызывающего.
func (m *ServiceTokenManager) Generate(service string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   service,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse проверяет токен и возвращает имя сервиса-вызывающего.
func (m *ServiceTokenManager) Parse(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", errors.New("токен невалиден")
	}
	return claims.Subject, nil
}
