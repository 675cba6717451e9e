package access

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RegisterAuthRoutes mounts the four auth endpoints on the given router.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login.post")

	app.Post(controller.Routes.Register, controller.RegisterPost).
		SetName("auth.register.post")

	app.Post(controller.Routes.PasswordReset, controller.PasswordResetPost).
		SetName("auth.pwd-reset.post")

	app.Post(controller.Routes.PasswordResetConfirm, controller.PasswordResetConfirmPost).
		SetName("auth.pwd-reset-confirm.post")
}

type AuthControllerRoutes struct {
	Login                string
	Register             string
	PasswordReset        string
	PasswordResetConfirm string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Auther       Authenticator
	Registrar    *RegisterUserHandler
	ResetRequest *RequestPasswordResetHandler
	ResetConfirm *ConfirmPasswordResetHandler
	Routes       *AuthControllerRoutes
	ErrorHandler func(router.Context, error) error
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &AuthControllerRoutes{
			Login:                "/auth/login",
			Register:             "/auth/register",
			PasswordReset:        "/auth/password-reset",
			PasswordResetConfirm: "/auth/password-reset/confirm",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Registrar == nil {
		panic("Missing RegisterUserHandler in auth controller...")
	}

	if c.ResetRequest == nil || c.ResetConfirm == nil {
		panic("Missing password reset handlers in auth controller...")
	}

	return c
}

// WithControllerAuther sets the authenticator used for login.
func WithControllerAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

// WithControllerHandlers sets the command handlers behind the endpoints.
func WithControllerHandlers(registrar *RegisterUserHandler, request *RequestPasswordResetHandler, confirm *ConfirmPasswordResetHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Registrar = registrar
		c.ResetRequest = request
		c.ResetConfirm = confirm
		return c
	}
}

// WithControllerLogger sets the controller logger.
func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
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
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, errorResponse{Message: err.Error()})
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	loginCtx := WithClientIP(ctx.Context(), clientOrigin(ctx))

	result, err := a.Auther.Login(loginCtx, payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("login error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, result)
}

// RegisterRequest payload
type RegisterRequest struct {
	Name        string   `form:"name" json:"name"`
	Email       string   `form:"email" json:"email"`
	Password    string   `form:"password" json:"password"`
	Role        string   `form:"role" json:"role"`
	Permissions []string `form:"permissions" json:"permissions,omitempty"`
	ManagerID   string   `form:"manager_id" json:"manager_id,omitempty"`
}

// Validate will validate the payload
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Role, validation.Required),
		validation.Field(&r.ManagerID, is.UUIDv4),
	)
}

func (a *AuthController) RegisterPost(ctx router.Context) error {
	payload := new(RegisterRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register parse payload", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, errorResponse{Message: err.Error()})
	}

	msg := RegisterUserMessage{
		Name:        payload.Name,
		Email:       payload.Email,
		Password:    payload.Password,
		Role:        payload.Role,
		Permissions: payload.Permissions,
		ManagerID:   payload.ManagerID,
	}

	if err := a.Registrar.Execute(ctx.Context(), msg); err != nil {
		a.Logger.Error("register user error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusCreated, map[string]string{
		"message": "user registered successfully",
	})
}

// PasswordResetRequestPayload payload
type PasswordResetRequestPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r PasswordResetRequestPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) PasswordResetPost(ctx router.Context) error {
	payload := new(PasswordResetRequestPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("password reset parse payload", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, errorResponse{Message: err.Error()})
	}

	msg := RequestPasswordResetMessage{Email: payload.Email}

	if err := a.ResetRequest.Execute(ctx.Context(), msg); err != nil {
		a.Logger.Error("password reset request error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]string{
		"message": "recovery code sent to the registered email",
	})
}

// PasswordResetConfirmPayload payload
type PasswordResetConfirmPayload struct {
	Email    string `form:"email" json:"email"`
	OTP      string `form:"otp" json:"otp"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r PasswordResetConfirmPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.OTP, validation.Required, validation.Length(OTPLength, OTPLength), is.Digit),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) PasswordResetConfirmPost(ctx router.Context) error {
	payload := new(PasswordResetConfirmPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("password reset confirm parse payload", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, errorResponse{Message: err.Error()})
	}

	msg := ConfirmPasswordResetMessage{
		Email:    payload.Email,
		OTP:      payload.OTP,
		Password: payload.Password,
	}

	if err := a.ResetConfirm.Execute(ctx.Context(), msg); err != nil {
		a.Logger.Error("password reset confirm error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]string{
		"message": "password reset successfully",
	})
}
