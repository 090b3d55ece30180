package auth

import (
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/devShreyas21/studentPortal/core/user"
)

const audience = "StudentPortal"

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64     `json:"oriat,omitempty"`
	Email        string    `json:"email,omitempty"`
	Role         user.Role `json:"role,omitempty"`
}

// UserID returns the id carried by the `sub` claim.
func (c Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

func (svc *Service) userClaims(usr user.User, origIat ...int64) *Claims {
	now := NowFunc()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    svc.conf.AppName,
			Subject:   strconv.FormatInt(usr.ID, 10),
			Audience:  audience,
			ExpiresAt: now.Add(svc.conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        usr.Email,
		Role:         usr.Role,
	}
}

// Session is what a successful login or registration hands back to the client.
type Session struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func expiredAt(ts int64, delta time.Duration) time.Time {
	return time.Unix(ts, 0).Add(delta)
}
