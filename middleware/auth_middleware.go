package middleware

import (
	"context"
	"errors"

	"github.com/anjiri1684/stay_booking/models"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const principalKey = "principal"

// UserLookup returns the current record for an authenticated user.
type UserLookup interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(secret),
		ErrorHandler: jwtError,
	})
}

// ProtectedSocket reads the token from the "token" query parameter, since
// browsers cannot set headers on websocket handshakes.
func ProtectedSocket(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(secret),
		TokenLookup:  "query:token",
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"success": false, "error": "Missing or malformed JWT"})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"success": false, "error": "Invalid or expired JWT"})
}

// LoadPrincipal resolves the token subject against the users table so role
// changes and deactivations apply without waiting for the token to expire.
func LoadPrincipal(users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok {
			return unauthorized(c, "Authentication required")
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorized(c, "Invalid token claims")
		}
		rawID, _ := claims["user_id"].(string)
		userID, err := uuid.Parse(rawID)
		if err != nil {
			return unauthorized(c, "Invalid token subject")
		}

		user, err := users.GetUser(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return unauthorized(c, "User no longer exists")
			}
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"success": false, "error": "Failed to load user"})
		}
		if !user.IsActive {
			return unauthorized(c, "Account is deactivated")
		}

		c.Locals(principalKey, models.Principal{UserID: user.ID, Role: user.Role})
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": msg})
}

// WithPrincipal stores p on the request; used by LoadPrincipal and in tests.
func WithPrincipal(p models.Principal) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(principalKey, p)
		return c.Next()
	}
}

func PrincipalFrom(c *fiber.Ctx) (models.Principal, bool) {
	p, ok := c.Locals(principalKey).(models.Principal)
	return p, ok
}

func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return unauthorized(c, "Authentication required")
		}
		for _, r := range roles {
			if p.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Forbidden: " + string(roles[0]) + " access required",
		})
	}
}

func AdminRequired() fiber.Handler { return RequireRole(models.RoleAdmin) }

func HostRequired() fiber.Handler { return RequireRole(models.RoleHost) }
