package session

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecoquest/ecoquest/core"
)

type adminCredentials struct {
	email        string
	passwordHash []byte
	signingKey   []byte
	ttl          time.Duration
}

func newAdminCredentials(conf *core.Config) (adminCredentials, error) {
	creds := adminCredentials{
		email:      conf.AdminEmail,
		signingKey: []byte(conf.SecretKey),
		ttl:        conf.JWTExpirationDelta,
	}
	if conf.AdminPasswordHash != "" {
		creds.passwordHash = []byte(conf.AdminPasswordHash)
		return creds, nil
	}
	if conf.AdminPassword == "" {
		return creds, nil // admin login disabled
	}
	hash, err := HashPassword(conf.AdminPassword)
	if err != nil {
		return creds, err
	}
	creds.passwordHash = hash
	return creds, nil
}

func (creds adminCredentials) check(email, pwd string) bool {
	if len(creds.passwordHash) == 0 || creds.email == "" {
		return false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(core.CleanString(email, true /* lower */)), []byte(creds.email)) == 1
	pwdOK := bcrypt.CompareHashAndPassword(creds.passwordHash, []byte(pwd)) == nil
	return emailOK && pwdOK
}

func HashPassword(pwd string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
}

// AdminClaims holds what a locally minted admin token carries.
type AdminClaims struct {
	jwt.StandardClaims
	Role      Role   `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// MintAdminToken signs an HS256 token for the distinguished admin identity.
// A zero ttl mints a token without expiry.
func MintAdminToken(email string, key []byte, ttl time.Duration, now time.Time) (string, error) {
	claims := AdminClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:  email,
			IssuedAt: now.Unix(),
		},
		Role:      RoleAdmin,
		FirstName: "Admin",
		LastName:  "User",
	}
	if ttl > 0 {
		claims.ExpiresAt = now.Add(ttl).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(key)
	if err != nil {
		return "", errors.Wrap(err, "signing admin token")
	}
	return ss, nil
}

// AdminLogin signs in the distinguished admin identity with the configured credentials.
func (svc *Service) AdminLogin(ctx context.Context, email, pwd string) (*Claims, error) {
	if !svc.admin.check(email, pwd) {
		return nil, ErrInvalidAdminLogin
	}

	now := NowFunc()
	token, err := MintAdminToken(svc.admin.email, svc.admin.signingKey, svc.admin.ttl, now)
	if err != nil {
		return nil, err
	}
	if err = svc.Signin(ctx, token); err != nil {
		return nil, err
	}

	claims, ok := ParseSession(token, now)
	if !ok {
		return nil, errors.New("minted an unreadable admin token")
	}
	return claims, nil
}
