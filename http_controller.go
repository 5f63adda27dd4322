package storefront

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/nyaruka/phonenumbers"
)

// Controller owns the route handlers. Validation is local to each handler;
// anything a handler does not recognize degrades to a 500 in WriteError.
type Controller struct {
	Debug  bool
	Logger Logger
	Repo   RepositoryManager
	Auther *RouteAuthenticator
}

type ControllerOption func(*Controller) *Controller

func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in storefront controller...")
	}

	if c.Auther == nil {
		panic("Missing RouteAuthenticator in storefront controller...")
	}

	return c
}

func WithRepository(repo RepositoryManager) ControllerOption {
	return func(c *Controller) *Controller {
		c.Repo = repo
		return c
	}
}

func WithHTTPAuthenticator(auther *RouteAuthenticator) ControllerOption {
	return func(c *Controller) *Controller {
		c.Auther = auther
		return c
	}
}

func WithLogger(logger Logger) ControllerOption {
	return func(c *Controller) *Controller {
		c.Logger = logger
		return c
	}
}

func WithDebug(debug bool) ControllerOption {
	return func(c *Controller) *Controller {
		c.Debug = debug
		return c
	}
}

// RegisterRoutes binds every endpoint with its method made explicit; a wrong
// method 405s at the router instead of silently matching.
func (a *Controller) RegisterRoutes(app fiber.Router, protected fiber.Handler) {
	app.Post("/signup", a.Signup)
	app.Post("/login", a.Login)
	app.Post("/logout", a.Logout)

	app.Get("/profile", protected, a.Profile)
	app.Post("/addproducts", protected, a.CreateProduct)
	app.Get("/getproducts", protected, a.ListProducts)
	app.Put("/updateproduct/:id", protected, a.UpdateProduct)
	app.Delete("/deleteproduct/:id", protected, a.DeleteProduct)
}

// SignupRequest payload
type SignupRequest struct {
	FirstName string `json:"firstName" form:"firstName"`
	Email     string `json:"email" form:"email"`
	Age       *int   `json:"age" form:"age"`
	Gender    string `json:"gender" form:"gender"`
	Phone     string `json:"phone" form:"phone"`
	Password  string `json:"password" form:"password"`
}

// Validate runs the checks in contract order so each failure keeps its
// published message.
func (r SignupRequest) Validate() error {
	if r.FirstName == "" || r.Email == "" || r.Password == "" {
		return goerrors.New("Name, email, and password are required.", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	if err := validation.Validate(r.Email, is.Email); err != nil {
		return goerrors.New("Invalid email format.", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	if err := validation.Validate(r.Password, validation.Length(8, 0)); err != nil {
		return goerrors.New("Password must be at least 8 characters long.", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	if r.Phone != "" {
		if err := validation.Validate(r.Phone, validation.By(validPhoneNumber)); err != nil {
			return goerrors.New("Invalid phone number.", goerrors.CategoryValidation).
				WithCode(goerrors.CodeBadRequest)
		}
	}

	return nil
}

func validPhoneNumber(value any) error {
	s, _ := value.(string)
	num, err := phonenumbers.Parse(s, "US")
	if err != nil {
		return err
	}
	if !phonenumbers.IsValidNumber(num) {
		return fmt.Errorf("invalid phone number")
	}
	return nil
}

func (a *Controller) Signup(c *fiber.Ctx) error {
	payload := new(SignupRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("signup parse payload", "error", err)
		return WriteError(c, goerrors.Wrap(err, goerrors.CategoryValidation, "Invalid request body.").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(c, err)
	}

	if a.Debug {
		fmt.Println("======= SIGNUP ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=====================")
	}

	registerUser := NewRegisterUserHandler(a.Repo)
	req := RegisterUserMessage{
		FirstName: payload.FirstName,
		Email:     payload.Email,
		Age:       payload.Age,
		Gender:    payload.Gender,
		Phone:     payload.Phone,
		Password:  payload.Password,
	}

	if err := registerUser.Execute(c.UserContext(), req); err != nil {
		a.Logger.Error("signup register user", "error", err)
		return WriteError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Email
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	); err != nil {
		return goerrors.New("Email and password are required.", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}
	return nil
}

func (a *Controller) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return WriteError(c, goerrors.Wrap(err, goerrors.CategoryValidation, "Invalid request body.").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(c, err)
	}

	if err := a.Auther.Login(c, payload); err != nil {
		return WriteError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Logged in successfully",
	})
}

// Logout clears the cookie unconditionally; a request with no session is not
// an error.
func (a *Controller) Logout(c *fiber.Ctx) error {
	a.Auther.Logout(c)
	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// Profile returns the guard-resolved user record as-is. That includes the
// password hash; see the data-exposure note in DESIGN.md.
func (a *Controller) Profile(c *fiber.Ctx) error {
	user, err := a.requestUser(c)
	if err != nil {
		return WriteError(c, err)
	}

	return c.JSON(user)
}

// ProductCreateRequest payload
type ProductCreateRequest struct {
	Name        string  `json:"name" form:"name"`
	Description string  `json:"description" form:"description"`
	Price       float64 `json:"price" form:"price"`
}

// Validate treats a zero price as missing, matching the contract this
// service replaces.
func (r ProductCreateRequest) Validate() error {
	if r.Name == "" || r.Description == "" || r.Price == 0 {
		return goerrors.New("Name, description, and price are required.", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}
	return nil
}

func (a *Controller) CreateProduct(c *fiber.Ctx) error {
	user, err := a.requestUser(c)
	if err != nil {
		return WriteError(c, err)
	}

	payload := new(ProductCreateRequest)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("create product parse payload", "error", err)
		return WriteError(c, goerrors.Wrap(err, goerrors.CategoryValidation, "Invalid request body.").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(c, err)
	}

	product := &Product{
		Name:        payload.Name,
		Description: payload.Description,
		Price:       payload.Price,
		CreatedByID: user.ID,
	}

	product, err = a.Repo.Products().Create(c.UserContext(), product)
	if err != nil {
		a.Logger.Error("create product", "error", err)
		return WriteError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product created successfully",
		"product": product,
	})
}

func (a *Controller) ListProducts(c *fiber.Ctx) error {
	if _, err := a.requestUser(c); err != nil {
		return WriteError(c, err)
	}

	records, err := a.Repo.Products().FindAll(c.UserContext())
	if err != nil {
		a.Logger.Error("list products", "error", err)
		return WriteError(c, err)
	}

	views := make([]*ProductView, 0, len(records))
	for _, record := range records {
		views = append(views, record.ListView())
	}

	return c.JSON(views)
}

// ProductUpdateRequest payload; every field optional, zero values keep the
// stored value.
type ProductUpdateRequest struct {
	Name        string  `json:"name" form:"name"`
	Description string  `json:"description" form:"description"`
	Price       float64 `json:"price" form:"price"`
}

func (a *Controller) UpdateProduct(c *fiber.Ctx) error {
	user, err := a.requestUser(c)
	if err != nil {
		return WriteError(c, err)
	}

	payload := new(ProductUpdateRequest)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("update product parse payload", "error", err)
		return WriteError(c, goerrors.Wrap(err, goerrors.CategoryValidation, "Invalid request body.").
			WithCode(goerrors.CodeBadRequest))
	}

	product, err := a.Repo.Products().FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return WriteError(c, err)
	}

	if !ownsProduct(product, user) {
		return WriteError(c, ErrUpdateNotOwner)
	}

	if payload.Name != "" {
		product.Name = payload.Name
	}
	if payload.Description != "" {
		product.Description = payload.Description
	}
	if payload.Price != 0 {
		product.Price = payload.Price
	}

	product, err = a.Repo.Products().Update(c.UserContext(), product)
	if err != nil {
		a.Logger.Error("update product", "error", err)
		return WriteError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Product updated successfully",
		"product": product,
	})
}

func (a *Controller) DeleteProduct(c *fiber.Ctx) error {
	user, err := a.requestUser(c)
	if err != nil {
		return WriteError(c, err)
	}

	product, err := a.Repo.Products().FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return WriteError(c, err)
	}

	if !ownsProduct(product, user) {
		return WriteError(c, ErrDeleteNotOwner)
	}

	if err := a.Repo.Products().Delete(c.UserContext(), product.ID); err != nil {
		a.Logger.Error("delete product", "error", err)
		return WriteError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}

func (a *Controller) requestUser(c *fiber.Ctx) (*User, error) {
	if user, ok := FromContext(c.UserContext()); ok && user != nil {
		return user, nil
	}
	return nil, ErrNoToken
}

// ownsProduct compares owner and requester ids as normalized strings.
func ownsProduct(product *Product, user *User) bool {
	if product == nil || user == nil {
		return false
	}
	return strings.EqualFold(product.CreatedByID.String(), user.ID.String())
}
