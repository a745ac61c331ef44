package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoIdentity возвращается, когда не задан ни driver id, ни токен сессии
	ErrNoIdentity = errors.New("session: driver identity is not configured")

	// ErrInvalidToken возвращается, когда токен сессии не удаётся разобрать
	ErrInvalidToken = errors.New("session: invalid session token")

	// ErrClaimMissing возвращается, когда в токене нет claim с driver id
	ErrClaimMissing = errors.New("session: driver id claim not found in token")

	// ErrTokenExpired возвращается для токена с истёкшим exp
	ErrTokenExpired = errors.New("session: session token expired")
)

// Identity идентичность водителя, выданная окружающей сессией.
// Ядро синхронизации использует её как непрозрачные значения.
type Identity struct {
	DriverID  string
	Token     string
	ExpiresAt *time.Time
}

// Resolve определяет driver id: явно заданный driverID имеет приоритет,
// иначе значение берётся из claim токена сессии.
// Подпись токена не проверяется, это делает backend.
func Resolve(driverID, token, claim string) (*Identity, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	driverID = strings.TrimSpace(driverID)

	if driverID == "" && token == "" {
		return nil, ErrNoIdentity
	}

	identity := &Identity{DriverID: driverID, Token: token}
	if token == "" {
		return identity, nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// непрозрачный (не JWT) токен допустим, если driver id задан явно
		if driverID != "" {
			return identity, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: bad exp claim: %v", ErrInvalidToken, err)
	}
	if exp != nil {
		expiresAt := exp.Time
		identity.ExpiresAt = &expiresAt
		if expiresAt.Before(time.Now()) {
			return nil, fmt.Errorf("%w: at %s", ErrTokenExpired, expiresAt.Format(time.RFC3339))
		}
	}

	if identity.DriverID != "" {
		return identity, nil
	}

	id, ok := claimString(claims, claim)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrClaimMissing, claim)
	}
	identity.DriverID = id

	return identity, nil
}

func claimString(claims jwt.MapClaims, name string) (string, bool) {
	raw, ok := claims[name]
	if !ok {
		if name == "sub" {
			return "", false
		}
		raw, ok = claims["sub"]
		if !ok {
			return "", false
		}
	}

	switch v := raw.(type) {
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}
