package api

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/derajoxford/stratagem-server-sub002/internal/constants"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// OperatorRequired guards admin routes with a signed operator bearer token.
// Player authentication proper lives in the account service; the turn
// engine only ever needs to know "is this the operator".
func OperatorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := os.Getenv(constants.EnvOperatorSecret)
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{constants.JSONKeyError: constants.ErrOperatorTokenRequired})
			return
		}
		header := c.GetHeader(constants.HeaderAuthorization)
		if !strings.HasPrefix(header, constants.BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrOperatorTokenRequired})
			return
		}
		raw := strings.TrimPrefix(header, constants.BearerPrefix)

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrOperatorTokenInvalid})
			return
		}
		c.Next()
	}
}
