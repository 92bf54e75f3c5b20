package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	db "github.com/banachtech/binotree/db/sqlc"
	"github.com/banachtech/binotree/util"
)

const secretLength = 24

// keyCost is the bcrypt cost of stored API keys.
var keyCost = 14

type createUserRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type createUserResponse struct {
	Email     string `json:"email"`
	APIKey    string `json:"api_key"`
	ExpiredAt string `json:"expired_at"`
}

// createUser issues a new API key valid for six months. Only its bcrypt
// hash is stored; the key itself is returned once.
func (server *Server) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	prefix, secret, err := util.GenerateToken(prefixLength, secretLength)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse(err))
		return
	}
	apiKey := fmt.Sprintf("%s.%s", prefix, secret)
	hashed, err := bcrypt.GenerateFromPassword([]byte(apiKey), keyCost)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	now := time.Now()
	user, err := server.store.CreateUser(c, db.CreateUserParams{
		EmailAddress: req.Email,
		Prefix:       prefix,
		Token:        string(hashed),
		GeneratedAt:  now.Format(Layout),
		ExpiredAt:    now.AddDate(0, 6, 0).Format(Layout),
	})
	if err != nil {
		server.abort(c, err)
		return
	}
	server.log.Info().Str("prefix", prefix).Msg("api key issued")
	c.JSON(http.StatusOK, createUserResponse{Email: user.EmailAddress, APIKey: apiKey, ExpiredAt: user.ExpiredAt})
}

// deleteUser revokes the API key the request was authenticated with.
func (server *Server) deleteUser(c *gin.Context) {
	prefix := c.MustGet(authorizationPayloadKey).(string)
	if err := server.store.DeleteUser(c, prefix); err != nil {
		server.abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
