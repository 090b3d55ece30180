package auth

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/devShreyas21/studentPortal/core"
	"github.com/devShreyas21/studentPortal/core/user"
)

var (
	NowFunc = time.Now // mockable

	signingMethod = jwt.SigningMethodHS256

	// errors
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUnauthorized        = errors.New("invalid or expired token")
	ErrForbidden           = errors.New("you do not have permission to perform this action")
	ErrRefreshExpired      = errors.New("refresh has expired")
	ErrRegistrationClosed  = errors.New("self-registration is disabled")
	ErrAdminSelfRegistered = errors.New("administrators cannot self-register")
)

type Service struct {
	conf     *core.Config
	users    *user.Service
	activity core.ActivityRecorder
}

func NewService(conf *core.Config, users *user.Service, activity core.ActivityRecorder) *Service {
	return &Service{conf: conf, users: users, activity: activity}
}

// Login exchanges valid credentials for a Session. Unknown emails and wrong passwords
// are indistinguishable to the caller.
func (svc *Service) Login(ctx context.Context, email, pwd string) (Session, error) {
	usr, err := svc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	token, err := svc.GenerateToken(usr)
	if err != nil {
		return Session{}, err
	}
	svc.activity.Record(ctx, usr.ID, "login")
	return Session{Token: token, User: usr}, nil
}

// Register creates a non-admin user and logs them in. It requires `AllowRegistration`.
// `nu` must already be validated.
func (svc *Service) Register(ctx context.Context, nu user.NewUser) (Session, error) {
	if err := svc.CheckRegistration(); err != nil {
		return Session{}, err
	}
	if nu.Role == user.RoleAdmin {
		return Session{}, core.NewValidationError(ErrAdminSelfRegistered, core.FieldError{
			Field: "role",
			Error: ErrAdminSelfRegistered.Error(),
		})
	}

	usr, err := svc.users.Create(ctx, nu)
	if err != nil {
		return Session{}, err
	}
	token, err := svc.GenerateToken(usr)
	if err != nil {
		return Session{}, err
	}
	svc.activity.Record(ctx, usr.ID, "register")
	return Session{Token: token, User: usr}, nil
}

// CheckRegistration fails with ErrForbidden when self-registration is disabled.
func (svc *Service) CheckRegistration() error {
	if !svc.conf.AllowRegistration {
		return errors.Wrap(ErrForbidden, ErrRegistrationClosed.Error())
	}
	return nil
}

// Authorize resolves the user behind `token` and checks it holds `role`.
// An empty role accepts any authenticated user.
func (svc *Service) Authorize(ctx context.Context, token string, role user.Role) (user.User, *Claims, error) {
	claims, err := svc.ParseToken(token)
	if err != nil {
		return user.User{}, nil, err
	}
	uid, err := claims.UserID()
	if err != nil {
		return user.User{}, nil, ErrUnauthorized
	}

	usr, err := svc.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, nil, ErrUnauthorized
		}
		return user.User{}, nil, errors.Wrap(err, "finding user by ID")
	}
	if role != "" && usr.Role != role {
		return user.User{}, nil, ErrForbidden
	}
	return usr, claims, nil
}

// Refresh issues a new token for `usr` while the original login is within the refresh window.
func (svc *Service) Refresh(usr user.User, claims *Claims) (string, error) {
	if NowFunc().After(expiredAt(claims.OrigIssuedAt, svc.conf.Server.JWTRefreshExpirationDelta)) {
		return "", ErrRefreshExpired
	}
	return svc.signClaims(svc.userClaims(usr, claims.OrigIssuedAt))
}

// GenerateToken generates a signed JWT token string for `usr`.
func (svc *Service) GenerateToken(usr user.User) (string, error) {
	return svc.signClaims(svc.userClaims(usr))
}

func (svc *Service) signClaims(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(signingMethod, claims)
	ss, err := token.SignedString([]byte(svc.conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// ParseToken verifies the signature and expiry of `token` and returns its claims.
func (svc *Service) ParseToken(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	claims := new(Claims)
	parser := jwt.Parser{ValidMethods: []string{signingMethod.Alg()}, SkipClaimsValidation: true}
	tkn, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(svc.conf.SecretKey), nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrUnauthorized
	}
	if !claims.VerifyExpiresAt(NowFunc().Unix(), true) {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
