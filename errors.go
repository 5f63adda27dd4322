package storefront

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidCredentials = "INVALID_CREDENTIALS"
	textCodeTokenExpired       = "TOKEN_EXPIRED"
	textCodeTokenMalformed     = "TOKEN_MALFORMED"
	textCodeEmailTaken         = "EMAIL_TAKEN"
	textCodeNotOwner           = "NOT_PRODUCT_OWNER"
)

// ErrNoEmptyString is returned when an empty password reaches the hasher.
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword covers both an unknown email and a wrong
// password so the two cases stay indistinguishable on the wire.
var ErrMismatchedHashAndPassword = goerrors.New("Invalid email or password.", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidCredentials).
	WithCode(goerrors.CodeBadRequest)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("User not found.", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrNoToken is returned when a guarded request carries no session cookie.
var ErrNoToken = goerrors.New("Access Denied. No token provided.", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned for tokens past their expiry claim.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenMalformed covers tampered or otherwise undecodable tokens.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMalformed).
	WithCode(goerrors.CodeBadRequest)

// ErrEmailTaken is returned when signup finds an existing record. Kept at 400
// rather than 409 to preserve the published contract.
var ErrEmailTaken = goerrors.New("Email already in use.", goerrors.CategoryConflict).
	WithTextCode(textCodeEmailTaken).
	WithCode(goerrors.CodeBadRequest)

// ErrProductNotFound is returned when a product lookup misses.
var ErrProductNotFound = goerrors.New("Product not found.", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// IsTokenExpiredError will check for expired tokens. Matches on the text
// code so wrapped validator errors are recognized too.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenExpired) {
		return true
	}
	return hasTextCode(err, textCodeTokenExpired)
}

// IsMalformedError will check for tampered or undecodable tokens.
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenMalformed) {
		return true
	}
	return hasTextCode(err, textCodeTokenMalformed)
}

func hasTextCode(err error, textCode string) bool {
	var richErr *goerrors.Error
	return goerrors.As(err, &richErr) && richErr.TextCode == textCode
}

// WriteError renders any error as the JSON envelope the API speaks. Known
// rich errors keep their status code and message; everything else degrades to
// a 500 with the underlying detail echoed in the "error" field.
func WriteError(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "Server error").
			WithCode(goerrors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	body := fiber.Map{"message": richErr.Message}
	if detail, ok := richErr.Metadata["error"]; ok {
		body["error"] = detail
	} else if richErr.Category == goerrors.CategoryInternal && richErr.Unwrap() != nil {
		body["error"] = richErr.Unwrap().Error()
	}

	return c.Status(status).JSON(body)
}

// ErrUpdateNotOwner gates product updates to the record's creator.
var ErrUpdateNotOwner = goerrors.New("You can only update your own products.", goerrors.CategoryAuthz).
	WithTextCode(textCodeNotOwner).
	WithCode(goerrors.CodeForbidden)

// ErrDeleteNotOwner gates product deletes to the record's creator.
var ErrDeleteNotOwner = goerrors.New("You can only delete your own products.", goerrors.CategoryAuthz).
	WithTextCode(textCodeNotOwner).
	WithCode(goerrors.CodeForbidden)
