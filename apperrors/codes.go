package apperrors

import "github.com/gofiber/fiber/v2"

const (
	CodeValidation      = "VALIDATION"
	CodeNotFound        = "NOT_FOUND"
	CodeForbidden       = "FORBIDDEN"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeConflict        = "CONFLICT"
	CodeInvalidState    = "INVALID_STATE"
	CodeUpstream        = "UPSTREAM"
)

// HTTPStatus maps an error code onto the status the API answers with.
// Conflicts are reported as 400 to keep the settlement and confirmation
// contracts stable for existing clients.
func HTTPStatus(code string) int {
	switch code {
	case CodeValidation, CodeConflict, CodeInvalidState:
		return fiber.StatusBadRequest
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeUnauthenticated:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}
