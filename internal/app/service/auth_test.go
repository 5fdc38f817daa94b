package service_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/utm-manager/internal/app/service"
)

const testSecret = "supersecretkey"

func TestBuildJWTString(t *testing.T) {
	auth := service.NewAuth(testSecret)

	tokenStr, userID, err := auth.BuildJWTString("")

	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)
	require.NotEmpty(t, userID)

	token, err := jwt.ParseWithClaims(tokenStr, &service.Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(*service.Claims)
	require.True(t, ok)
	require.Equal(t, userID, claims.UserID)
	require.WithinDuration(t, time.Now().Add(service.TokenExp), claims.ExpiresAt.Time, time.Minute)
}

func TestBuildJWTString_KeepsOwner(t *testing.T) {
	auth := service.NewAuth(testSecret)

	tokenStr, userID, err := auth.BuildJWTString("owner-1")
	require.NoError(t, err)
	require.Equal(t, "owner-1", userID)

	claims, err := auth.ParseRawJWT(tokenStr)
	require.NoError(t, err)
	require.Equal(t, "owner-1", claims.UserID)
}

func TestParseClaims(t *testing.T) {
	auth := service.NewAuth(testSecret)

	t.Run("valid token", func(t *testing.T) {
		userID := "test-user-id"
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, service.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(service.TokenExp)),
			},
			UserID: userID,
		})

		signedToken, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		claims, err := auth.ParseClaims(&http.Cookie{Name: "token", Value: signedToken})
		require.NoError(t, err)
		require.Equal(t, userID, claims.UserID)
	})

	t.Run("invalid token", func(t *testing.T) {
		claims, err := auth.ParseClaims(&http.Cookie{Name: "token", Value: "invalid.token.here"})
		require.Error(t, err)
		require.Nil(t, claims)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, _, err := service.NewAuth("other").BuildJWTString("x")
		require.NoError(t, err)

		_, err = auth.ParseRawJWT(other)
		require.Error(t, err)
	})

	t.Run("missing owner", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, service.Claims{})
		signed, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = auth.ParseRawJWT(signed)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})
}
