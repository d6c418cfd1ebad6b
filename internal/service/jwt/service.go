package jwtService

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nkoroteev/bleep/internal/models"
)

type JWT struct {
	secret []byte
}

func New(secret []byte) *JWT {
	return &JWT{
		secret: secret,
	}
}

// NewToken issues a signed access token for editor.
func (j *JWT) NewToken(editor models.Editor, duration time.Duration) (string, error) {
	const op = "JWT.NewToken"

	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["uid"] = editor.ID
	claims["login"] = editor.Login
	claims["exp"] = time.Now().Add(duration).Unix()

	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return tokenString, nil
}
