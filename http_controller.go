package users

import (
	"context"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// SignUpResponse is the signup success payload.
type SignUpResponse struct {
	SignUpStatus string  `json:"signUpStatus"`
	Message      string  `json:"message"`
	User         UserDTO `json:"user"`
}

// AuthResponse is the login success payload: the user's identity plus
// the raw session token the client presents on later requests.
type AuthResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// UsersController exposes the account surface over HTTP. It owns no
// business rules: bodies are decoded and validated here, everything
// else is delegated to the workflows and repositories, and failures
// bubble to the error handler untranslated.
type UsersController struct {
	repo       RepositoryManager
	auther     *Auther
	registerer *RegisterUserHandler
	activator  *ActivateAccountHandler
	localizer  *Localizer
	logger     Logger
}

// NewUsersController returns a new UsersController
func NewUsersController(
	repo RepositoryManager,
	auther *Auther,
	registerer *RegisterUserHandler,
	activator *ActivateAccountHandler,
	localizer *Localizer,
) *UsersController {
	return &UsersController{
		repo:       repo,
		auther:     auther,
		registerer: registerer,
		activator:  activator,
		localizer:  localizer,
		logger:     defLogger{},
	}
}

func (ct *UsersController) WithLogger(logger Logger) *UsersController {
	if logger != nil {
		ct.logger = logger
	}
	return ct
}

type route struct {
	method  string
	path    string
	handler fiber.Handler
}

// RegisterRoutes mounts the account API under /api/1.0. The table is
// fixed at startup; nothing registers routes after this returns.
func (ct *UsersController) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api/1.0")
	api.Use(TokenAuthentication(ct.auther))

	routes := []route{
		{fiber.MethodPost, "/users", ct.SignUp},
		{fiber.MethodPost, "/users/token/:token", ct.Activate},
		{fiber.MethodGet, "/users", ct.List},
		{fiber.MethodGet, "/users/:id", ct.Show},
		{fiber.MethodPut, "/users/:id", ct.Update},
		{fiber.MethodDelete, "/users/:id", ct.Delete},
		{fiber.MethodPost, "/auth", ct.Authenticate},
	}

	for _, r := range routes {
		api.Add(r.method, r.path, r.handler)
	}
}

// SignUp handles POST /users.
func (ct *UsersController) SignUp(c *fiber.Ctx) error {
	req := SignUpRequest{}
	if err := DecodeStrict(c.Body(), &req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		return err
	}

	var created *User
	event := RegisterUserMessage{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		OnResponse: func(resp *RegisterUserResponse) {
			created = resp.User
		},
	}

	if err := ct.registerer.Execute(c.UserContext(), event); err != nil {
		return err
	}

	return c.JSON(SignUpResponse{
		SignUpStatus: "success",
		Message:      ct.translate(c, MsgUserCreated, nil),
		User:         NewUserDTO(created),
	})
}

// Activate handles POST /users/token/:token.
func (ct *UsersController) Activate(c *fiber.Ctx) error {
	event := ActivateAccountMessage{Token: c.Params("token")}

	if err := ct.activator.Execute(c.UserContext(), event); err != nil {
		return err
	}

	return c.JSON(APIMessage{
		Message: ct.translate(c, MsgAccountActivated, nil),
	})
}

// List handles GET /users. Only active accounts are listed, and the
// caller's own record is left out of their page.
func (ct *UsersController) List(c *fiber.Ctx) error {
	page, size := ParsePagination(c)

	var excludeID int64
	if caller := AuthenticatedUser(c); caller != nil {
		excludeID = caller.ID
	}

	records, total, err := ct.repo.Users().ListActivePage(c.UserContext(), page*size, size, excludeID)
	if err != nil {
		return err
	}

	content := make([]UserDTO, 0, len(records))
	for _, record := range records {
		content = append(content, NewUserDTO(record))
	}

	return c.JSON(Page{
		Content:    content,
		Page:       page,
		Size:       size,
		TotalPages: TotalPages(total, size),
	})
}

// Show handles GET /users/:id.
func (ct *UsersController) Show(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return ErrUserNotFound
	}

	record, err := ct.repo.Users().GetActiveByID(c.UserContext(), int64(id))
	if err != nil {
		if IsRecordNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}

	return c.JSON(NewUserDTO(record))
}

// Update handles PUT /users/:id. Only the owner may update, and an
// anonymous caller gets the same refusal as the wrong caller.
func (ct *UsersController) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return ErrUnauthorized
	}

	caller := AuthenticatedUser(c)
	if caller == nil || caller.ID != int64(id) {
		return ErrUnauthorized
	}

	req := UpdateUserRequest{}
	if err := DecodeStrict(c.Body(), &req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		return err
	}

	caller.Username = req.Username
	columns := []string{"username"}

	if req.Email != "" && req.Email != caller.Email {
		if _, err := ct.repo.Users().GetByEmail(c.UserContext(), req.Email); err == nil {
			return NewDuplicateFieldError("email", req.Email)
		} else if !IsRecordNotFound(err) {
			return err
		}
		caller.Email = req.Email
		columns = append(columns, "email")
	}

	if _, err := ct.repo.Users().Update(c.UserContext(), caller, columns...); err != nil {
		return err
	}

	return c.JSON(APIMessage{
		Message: ct.translate(c, MsgUserUpdated, nil),
	})
}

// Delete handles DELETE /users/:id. The record and every session it
// owns go away together.
func (ct *UsersController) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return ErrUnauthorized
	}

	caller := AuthenticatedUser(c)
	if caller == nil || caller.ID != int64(id) {
		return ErrUnauthorized
	}

	err = ct.repo.RunInTx(c.UserContext(), nil, func(ctx context.Context, tx bun.Tx) error {
		if err := ct.repo.AuthTokens().DeleteByUserTx(ctx, tx, caller.ID); err != nil {
			return err
		}
		return ct.repo.Users().DeleteTx(ctx, tx, caller.ID)
	})
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "user delete transaction failed")
	}

	return c.JSON(APIMessage{
		Message: ct.translate(c, MsgUserDeleted, nil),
	})
}

// Authenticate handles POST /auth.
func (ct *UsersController) Authenticate(c *fiber.Ctx) error {
	req := LoginRequest{}
	if err := DecodeStrict(c.Body(), &req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		return err
	}

	user, token, err := ct.auther.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(AuthResponse{
		ID:       user.ID,
		Username: user.Username,
		Token:    token,
	})
}

func (ct *UsersController) translate(c *fiber.Ctx, key string, data map[string]any) string {
	if ct.localizer == nil {
		return key
	}
	return ct.localizer.Translate(c.Get(fiber.HeaderAcceptLanguage), key, data)
}
