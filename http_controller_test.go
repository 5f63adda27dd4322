package storefront_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	storefront "github.com/goliatone/go-storefront"
	"github.com/goliatone/go-storefront/middleware/guard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, name string) (*fiber.App, storefront.RepositoryManager) {
	t.Helper()

	db := newTestDB(t, name)
	repo := storefront.NewRepositoryManager(db)
	repo.MustValidate()

	cfg := &storefront.Config{
		SigningKey:      "test-signing-key",
		Issuer:          "go-storefront",
		CookieName:      "token",
		TokenExpiration: time.Hour,
	}

	provider := storefront.NewUserProvider(repo.Users())
	auther := storefront.NewAuthenticator(provider, cfg)
	httpAuth := storefront.NewHTTPAuthenticator(auther, cfg)

	protected := guard.New(guard.Config{
		CookieName: cfg.CookieName,
		Validator:  auther.TokenService(),
		Resolve: func(ctx context.Context, id string) (*storefront.User, error) {
			return repo.Users().GetByIdentifier(ctx, id)
		},
	})

	app := fiber.New()

	controller := storefront.NewController(
		storefront.WithRepository(repo),
		storefront.WithHTTPAuthenticator(httpAuth),
	)
	controller.RegisterRoutes(app, protected)

	return app, repo
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	defer resp.Body.Close()
	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func signup(t *testing.T, app *fiber.App, firstName, email, password string) {
	t.Helper()

	resp := doJSON(t, app, fiber.MethodPost, "/signup", fiber.Map{
		"firstName": firstName,
		"email":     email,
		"password":  password,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func login(t *testing.T, app *fiber.App, email, password string) *http.Cookie {
	t.Helper()

	resp := doJSON(t, app, fiber.MethodPost, "/login", fiber.Map{
		"email":    email,
		"password": password,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	for _, cookie := range resp.Cookies() {
		if cookie.Name == "token" {
			return cookie
		}
	}

	t.Fatal("login response did not set the token cookie")
	return nil
}

func TestSignup(t *testing.T) {
	app, _ := newTestApp(t, "http_signup")

	t.Run("registers a new user", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodPost, "/signup", fiber.Map{
			"firstName": "Ada",
			"email":     "ada@example.com",
			"password":  "correct-password",
			"age":       30,
			"gender":    "female",
		})
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.Equal(t, "User registered successfully", decodeBody(t, resp)["message"])
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodPost, "/signup", fiber.Map{
			"firstName": "Impostor",
			"email":     "ada@example.com",
			"password":  "another-password",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Email already in use.", decodeBody(t, resp)["message"])
	})

	t.Run("requires name email and password", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodPost, "/signup", fiber.Map{
			"email": "missing@example.com",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Name, email, and password are required.", decodeBody(t, resp)["message"])
	})

	t.Run("rejects a malformed email", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodPost, "/signup", fiber.Map{
			"firstName": "Ada",
			"email":     "not-an-email",
			"password":  "correct-password",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid email format.", decodeBody(t, resp)["message"])
	})

	t.Run("rejects a short password", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodPost, "/signup", fiber.Map{
			"firstName": "Ada",
			"email":     "short@example.com",
			"password":  "short",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Password must be at least 8 characters long.", decodeBody(t, resp)["message"])
	})
}

func TestLogin(t *testing.T) {
	app, _ := newTestApp(t, "http_login")
	signup(t, app, "Ada", "ada@example.com", "correct-password")

	t.Run("issues a session cookie", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodPost, "/login", fiber.Map{
			"email":    "ada@example.com",
			"password": "correct-password",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var cookie *http.Cookie
		for _, c := range resp.Cookies() {
			if c.Name == "token" {
				cookie = c
			}
		}
		require.NotNil(t, cookie)
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)

		assert.Equal(t, "Logged in successfully", decodeBody(t, resp)["message"])
	})

	t.Run("requires email and password", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodPost, "/login", fiber.Map{
			"email": "ada@example.com",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Email and password are required.", decodeBody(t, resp)["message"])
	})

	t.Run("same error for wrong password and unknown email", func(t *testing.T) {
		wrongPass := doJSON(t, app, fiber.MethodPost, "/login", fiber.Map{
			"email":    "ada@example.com",
			"password": "wrong-password",
		})
		unknown := doJSON(t, app, fiber.MethodPost, "/login", fiber.Map{
			"email":    "nobody@example.com",
			"password": "wrong-password",
		})

		assert.Equal(t, fiber.StatusBadRequest, wrongPass.StatusCode)
		assert.Equal(t, fiber.StatusBadRequest, unknown.StatusCode)
		assert.Equal(t, "Invalid email or password.", decodeBody(t, wrongPass)["message"])
		assert.Equal(t, "Invalid email or password.", decodeBody(t, unknown)["message"])
	})
}

func TestLogout(t *testing.T) {
	app, _ := newTestApp(t, "http_logout")

	resp := doJSON(t, app, fiber.MethodPost, "/logout", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "logout clears the cookie even without a session")
	assert.True(t, cookie.Expires.Before(time.Now()))

	assert.Equal(t, "Logged out successfully", decodeBody(t, resp)["message"])
}

func TestProfile(t *testing.T) {
	app, _ := newTestApp(t, "http_profile")
	signup(t, app, "Ada", "ada@example.com", "correct-password")
	cookie := login(t, app, "ada@example.com", "correct-password")

	t.Run("returns the authenticated user", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodGet, "/profile", nil, cookie)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "Ada", body["firstName"])
		assert.Equal(t, "ada@example.com", body["email"])
	})

	t.Run("rejects a request with no cookie", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodGet, "/profile", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Access Denied. No token provided.", decodeBody(t, resp)["message"])
	})

	t.Run("rejects a garbage token", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodGet, "/profile", nil, &http.Cookie{
			Name:  "token",
			Value: "not.a.jwt",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "Invalid token.", body["message"])
		assert.NotEmpty(t, body["error"])
	})
}

func TestProducts(t *testing.T) {
	app, _ := newTestApp(t, "http_products")
	signup(t, app, "Ada", "ada@example.com", "correct-password")
	signup(t, app, "Grace", "grace@example.com", "correct-password")
	ada := login(t, app, "ada@example.com", "correct-password")
	grace := login(t, app, "grace@example.com", "correct-password")

	var productID string

	t.Run("create", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodPost, "/addproducts", fiber.Map{
			"name":        "Mechanical keyboard",
			"description": "Tenkeyless, brown switches",
			"price":       120.50,
		}, ada)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "Product created successfully", body["message"])

		product, ok := body["product"].(map[string]any)
		require.True(t, ok)
		productID, ok = product["id"].(string)
		require.True(t, ok)
		require.NotEmpty(t, productID)
	})

	t.Run("create requires every field", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodPost, "/addproducts", fiber.Map{
			"name": "No description",
		}, ada)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Name, description, and price are required.", decodeBody(t, resp)["message"])
	})

	t.Run("list shows every product with a reduced owner", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodGet, "/getproducts", nil, grace)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		defer resp.Body.Close()
		var records []map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
		require.Len(t, records, 1)

		owner, ok := records[0]["createdBy"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Ada", owner["firstName"])
		assert.Equal(t, "ada@example.com", owner["email"])
		assert.NotContains(t, owner, "password")
	})

	t.Run("partial update keeps unset fields", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodPut, "/updateproduct/"+productID, fiber.Map{
			"price": 99.99,
		}, ada)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "Product updated successfully", body["message"])

		product, ok := body["product"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, 99.99, product["price"])
		assert.Equal(t, "Mechanical keyboard", product["name"])
	})

	t.Run("update by a non-owner is forbidden", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodPut, "/updateproduct/"+productID, fiber.Map{
			"price": 1,
		}, grace)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "You can only update your own products.", decodeBody(t, resp)["message"])
	})

	t.Run("update of a missing product is a 404", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodPut, "/updateproduct/a2bb25ac-2fbd-41a4-9c4b-6c9d37f46bbc", fiber.Map{
			"price": 1,
		}, ada)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Product not found.", decodeBody(t, resp)["message"])
	})

	t.Run("delete by a non-owner is forbidden", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodDelete, "/deleteproduct/"+productID, nil, grace)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "You can only delete your own products.", decodeBody(t, resp)["message"])
	})

	t.Run("delete by the owner", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodDelete, "/deleteproduct/"+productID, nil, ada)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "Product deleted successfully", decodeBody(t, resp)["message"])

		gone := doJSON(t, app, fiber.MethodDelete, "/deleteproduct/"+productID, nil, ada)
		assert.Equal(t, fiber.StatusNotFound, gone.StatusCode)
		assert.Equal(t, "Product not found.", decodeBody(t, gone)["message"])
	})
}

func TestGuardedRoutesShareTheSameGate(t *testing.T) {
	app, _ := newTestApp(t, "http_gate")

	paths := []struct {
		method string
		path   string
	}{
		{fiber.MethodGet, "/profile"},
		{fiber.MethodPost, "/addproducts"},
		{fiber.MethodGet, "/getproducts"},
		{fiber.MethodPut, "/updateproduct/some-id"},
		{fiber.MethodDelete, "/deleteproduct/some-id"},
	}

	for _, tt := range paths {
		t.Run(fmt.Sprintf("%s %s", tt.method, tt.path), func(t *testing.T) {
			resp := doJSON(t, app, tt.method, tt.path, nil)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "Access Denied. No token provided.", decodeBody(t, resp)["message"])
		})
	}
}
