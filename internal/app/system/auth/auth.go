// Package auth is the credential service: it verifies who a request is
// from and injects the resulting SessionUser into the request context.
// Two credential carriers are accepted: the session cookie set at login
// (browser dashboard) and a bearer token returned by the login response
// (API clients). Both resolve to a fresh user record on every request so
// role and team changes take effect immediately.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/taskhub/internal/app/system/apijson"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
)

// SessionUser is what LoadSessionUser injects into r.Context().
type SessionUser struct {
	ID           string
	Name         string
	Email        string
	Role         models.Role
	TeamID       string // hex ObjectID, empty when the user has no team
	TokenVersion int
}

// UserFetcher loads fresh user data for a user ID. Implementations return
// nil when the user does not exist (or should no longer be trusted).
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// Claims is the bearer-token payload. Ver must match the user's current
// token_version; logout bumps the version, which retires older tokens.
type Claims struct {
	UserID string `json:"uid"`
	Ver    int    `json:"ver"`
	jwt.RegisteredClaims
}

// SessionManager owns the cookie store and the token signing key.
type SessionManager struct {
	store       *sessions.CookieStore
	cookieName  string
	tokenSecret []byte
	tokenTTL    time.Duration
	fetcher     UserFetcher
	log         *zap.Logger
}

// NewSessionManager builds the credential service. An empty sessionKey is
// rejected; a short key gets a warning only.
func NewSessionManager(sessionKey, cookieName, domain string, secure bool, tokenSecret string, tokenTTL time.Duration, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if tokenSecret == "" {
		// Tokens still work within a single process run.
		logger.Warn("token secret is empty; generating an ephemeral one")
		tokenSecret = string(securecookie.GenerateRandomKey(32))
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session manager initialized",
		zap.Bool("secure", secure),
		zap.String("cookie", cookieName),
		zap.Duration("token_ttl", tokenTTL))

	return &SessionManager{
		store:       store,
		cookieName:  cookieName,
		tokenSecret: []byte(tokenSecret),
		tokenTTL:    tokenTTL,
		log:         logger,
	}, nil
}

// SetUserFetcher wires the store-backed fetcher. Must be called before the
// middleware runs; without a fetcher every request is anonymous.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// SignIn marks the cookie session as authenticated for the given user.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, userID string) error {
	sess, err := sm.store.Get(r, sm.cookieName)
	if err != nil {
		// A stale or re-keyed cookie decodes with an error but still
		// yields a usable fresh session.
		sm.log.Warn("session cookie invalid, using fresh session", zap.Error(err))
	}
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = userID
	return sess.Save(r, w)
}

// SignOut clears the cookie session.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.cookieName)
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// IssueToken signs a bearer token for the user at their current token
// version.
func (sm *SessionManager) IssueToken(userID string, tokenVersion int) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Ver:    tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(sm.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(sm.tokenSecret)
}

func (sm *SessionManager) parseToken(tokenString string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return sm.tokenSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// LoadSessionUser resolves the request credential (bearer token first,
// cookie session second) to a fresh SessionUser and injects it into the
// context. Unresolvable credentials leave the request anonymous; the
// Require* middleware decides whether that is an error.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := sm.resolveUser(r); u != nil {
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

func (sm *SessionManager) resolveUser(r *http.Request) *SessionUser {
	if sm.fetcher == nil {
		return nil
	}

	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return nil
		}
		claims, err := sm.parseToken(parts[1])
		if err != nil {
			return nil
		}
		u := sm.fetcher.FetchUser(r.Context(), claims.UserID)
		if u == nil || u.TokenVersion != claims.Ver {
			// Token predates the user's last logout.
			return nil
		}
		return u
	}

	sess, err := sm.store.Get(r, sm.cookieName)
	if err != nil {
		return nil
	}
	if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
		return nil
	}
	userID, _ := sess.Values[userIDKey].(string)
	if userID == "" {
		return nil
	}
	return sm.fetcher.FetchUser(r.Context(), userID)
}

// RequireSignedIn ensures there is a user in context (set by
// LoadSessionUser); otherwise 401 with a structured error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			apijson.WriteError(w, apijson.Unauthenticated("not authorized, no valid credential"), sm.log)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures the signed-in user holds one of the allowed roles.
// Missing user → 401; wrong role → 403.
func (sm *SessionManager) RequireRole(allowed ...models.Role) func(http.Handler) http.Handler {
	set := make(map[models.Role]struct{}, len(allowed))
	for _, role := range allowed {
		set[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				apijson.WriteError(w, apijson.Unauthenticated("not authorized, no valid credential"), sm.log)
				return
			}
			if _, has := set[u.Role]; !has {
				apijson.WriteError(w, apijson.Forbidden(
					fmt.Sprintf("role %s is not authorized for this route", u.Role)), sm.log)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithTestUser injects a user directly into the request context,
// bypassing the credential middleware. Test helper only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}
