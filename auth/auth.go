package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenLifetime   = 24 * time.Hour
	sessionLifetime = 24 * time.Hour
	// Sessions are only re-extended once they have aged a few hours,
	// to avoid hammering redis on every request.
	sessionRefreshBelow = 20 * time.Hour
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthModule issues JWTs for API access and short-lived redis sessions
// for the live websocket, backed by the users table.
type AuthModule struct {
	db        *pgxpool.Pool
	redis     *redis.Client
	jwtSecret string
}

func NewAuthModule(db *pgxpool.Pool, redisClient *redis.Client, jwtSecret string) *AuthModule {
	return &AuthModule{
		db:        db,
		redis:     redisClient,
		jwtSecret: jwtSecret,
	}
}

// Register creates a user and returns a signed JWT for it.
func (a *AuthModule) Register(ctx context.Context, username, password, email string) (string, error) {
	var exists bool
	err := a.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)", username).Scan(&exists)
	if err != nil {
		return "", err
	}
	if exists {
		return "", errors.New("username already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	var userID int
	err = a.db.QueryRow(ctx,
		"INSERT INTO users (username, password, email) VALUES ($1, $2, $3) RETURNING id",
		username, string(hashed), email,
	).Scan(&userID)
	if err != nil {
		return "", err
	}

	return a.generateJWT(userID)
}

// Login verifies credentials and returns a signed JWT.
func (a *AuthModule) Login(ctx context.Context, username, password string) (string, error) {
	userID, err := a.authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	return a.generateJWT(userID)
}

// ValidateToken checks a JWT and returns the user id it carries.
func (a *AuthModule) ValidateToken(ctx context.Context, token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.jwtSecret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return "", errors.New("invalid user_id in token")
	}
	return fmt.Sprintf("%d", int(userID)), nil
}

// CreateSession stores an opaque websocket session token in redis for an
// already authenticated user.
func (a *AuthModule) CreateSession(ctx context.Context, userID string) (string, error) {
	token, err := generateSecureToken(32)
	if err != nil {
		return "", err
	}
	if err := a.redis.Set(ctx, "session:"+token, userID, sessionLifetime).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// ValidateSession resolves a session token to a user id, sliding the
// expiry forward when the session is getting old.
func (a *AuthModule) ValidateSession(ctx context.Context, token string) (string, error) {
	key := "session:" + token
	userID, err := a.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", errors.New("invalid session")
	} else if err != nil {
		return "", err
	}

	ttl, err := a.redis.TTL(ctx, key).Result()
	if err != nil && err != redis.Nil {
		return "", err
	}
	if ttl < sessionRefreshBelow {
		if err := a.redis.Expire(ctx, key, sessionLifetime).Err(); err != nil {
			return "", err
		}
	}
	return userID, nil
}

// DestroySession removes a websocket session token.
func (a *AuthModule) DestroySession(ctx context.Context, token string) error {
	return a.redis.Del(ctx, "session:"+token).Err()
}

// ChangePassword changes the user's password after verifying the old one.
func (a *AuthModule) ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error {
	var hash string
	err := a.db.QueryRow(ctx, "SELECT password FROM users WHERE id = $1", userID).Scan(&hash)
	if err != nil {
		return errors.New("user not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(oldPassword)); err != nil {
		return errors.New("invalid old password")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = a.db.Exec(ctx, "UPDATE users SET password = $1 WHERE id = $2", string(hashed), userID)
	return err
}

func (a *AuthModule) authenticate(ctx context.Context, username, password string) (int, error) {
	var userID int
	var hash string
	err := a.db.QueryRow(ctx, "SELECT id, password FROM users WHERE username = $1", username).Scan(&userID, &hash)
	if err != nil {
		return 0, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return 0, ErrInvalidCredentials
	}
	return userID, nil
}

func (a *AuthModule) generateJWT(userID int) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(tokenLifetime).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.jwtSecret))
}

func generateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
