package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campushub/api/internal/config"
	"github.com/campushub/api/internal/domain/course"
	"github.com/campushub/api/internal/domain/user"
	"github.com/campushub/api/internal/http/middlewares"
	"github.com/campushub/api/internal/repo/mongodb"
	"github.com/campushub/api/internal/security"
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByUserID(ctx context.Context, userID string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
	TeachingClasses(ctx context.Context, userID string) ([]course.Course, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID, role string) (string, error)
}

type UsersHandler struct {
	store UserStore
	jwt   TokenIssuer
	log   *slog.Logger
}

func NewUsersHandler(store UserStore, jwt TokenIssuer, log *slog.Logger) *UsersHandler {
	return &UsersHandler{
		store: store,
		jwt:   jwt,
		log:   log,
	}
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=admin instructor student"`
	UserID   string `json:"userid" binding:"omitempty,min=1"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateUser registers a new user. The route runs the auth middleware
// and an admin role gate before this handler; the check here is the
// last line in case the handler is ever mounted without them.
func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	role, ok := middlewares.RoleFromContext(ctx)

	if !ok || role != user.RoleAdmin {
		RespondForbidden(ctx, "Forbidden")
		return
	}

	var req CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "password hash failed", "err", err)
		RespondInternal(ctx, "Error creating user")
		return
	}

	userID := req.UserID

	if userID == "" {
		userID = uuid.NewString()
	}

	now := time.Now().UTC()

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	u, err := h.store.Create(cctx, user.User{
		UserID:       userID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	if err != nil {
		// duplicate email surfaces as a generic failure on purpose; the
		// store's uniqueness constraint is the only arbiter here
		h.log.ErrorContext(ctx.Request.Context(), "create user failed", "err", err)
		RespondInternal(ctx, "Error creating user")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"id": u.UserID})
}

func (h *UsersHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	foundUser, err := h.store.GetByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, mongodb.ErrUserNotFound) {
			// same message as a wrong password so callers cannot probe
			// which emails exist
			RespondUnAuthorized(ctx, "invalid_credentials", "Invalid password")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "login lookup failed", "err", err)
		RespondInternal(ctx, "Error logging in")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Invalid password")
		return
	}

	token, err := h.jwt.GenerateAccessToken(foundUser.UserID, foundUser.Role)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "token mint failed", "err", err)
		RespondInternal(ctx, "Error logging in")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *UsersHandler) GetUserByID(ctx *gin.Context) {
	userID := ctx.Param("userId")

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	subject, err := h.store.GetByUserID(cctx, userID)

	if err != nil {
		if errors.Is(err, mongodb.ErrUserNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "get user failed", "err", err)
		RespondInternal(ctx, "Error getting user")
		return
	}

	callerID, _ := middlewares.UserIDFromContext(ctx)
	callerRole, _ := middlewares.RoleFromContext(ctx)

	if callerRole != user.RoleAdmin && callerID != subject.UserID {
		RespondForbidden(ctx, "Forbidden")
		return
	}

	classes := []course.Course{}

	if subject.Role == user.RoleStudent {
		classes, err = h.store.TeachingClasses(cctx, subject.UserID)

		if err != nil {
			h.log.ErrorContext(ctx.Request.Context(), "teaching classes lookup failed", "err", err)
			RespondInternal(ctx, "Error getting user")
			return
		}
	}

	ctx.JSON(http.StatusOK, subject.Profile(classes))
}
