// Package auth issues and checks the HS256 access tokens that guard the
// remote dispatcher.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/walletkeeper/internal/filex"
)

// TokenFileName is the file under the storage root holding a token minted
// by the server for local clients.
const TokenFileName = "access_token"

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims identify the client a token was issued to.
type Claims struct {
	jwt.RegisteredClaims
	ClientID string `json:"cid"`
}

func GenerateToken(clientID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		ClientID: clientID,
	})

	return token.SignedString(secretKey)
}

// ValidateToken returns the client id of a valid token.
func ValidateToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid || claims.ClientID == "" {
		return "", ErrTokenInvalid
	}

	return claims.ClientID, nil
}

// WriteTokenFile stores token under root with owner-only permissions.
func WriteTokenFile(root, token string) (string, error) {
	path := filepath.Join(root, TokenFileName)
	if err := filex.WriteFileAtomic(path, []byte(token+"\n"), filex.FilePerm); err != nil {
		return "", err
	}
	return path, nil
}

func ReadTokenFile(root string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, TokenFileName))
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrTokenInvalid
	}
	return token, nil
}
