package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recruitflow/internal/errors"
	"recruitflow/internal/model"
	"recruitflow/internal/repository"
)

// Cache keys shared by services that read and invalidate them.
const (
	cacheKeyActivePlans    = "plans:active"
	cacheKeyAdminDashboard = "dashboard:admin"
	cacheKeyUserStatusFmt  = "user:status:%s"

	adminDashboardTTL = time.Minute
	activePlansTTL    = 10 * time.Minute
	userStatusTTL     = 5 * time.Minute
)

func userStatusKey(id uuid.UUID) string {
	return fmt.Sprintf(cacheKeyUserStatusFmt, id)
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uuid.UUID
	Role   model.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

// Page is one page of a listing.
type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}

func newPage[T any](items []T, total int64, opts repository.ListOptions) *Page[T] {
	opts = opts.Normalize()
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Total: total, Page: opts.Page, Limit: opts.Limit}
}

// notFound turns gorm.ErrRecordNotFound into the domain sentinel and wraps everything else.
func notFound(err, sentinel error, op string) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}

// ensureEmailFree returns ErrEmailTaken when a user already owns email.
func ensureEmailFree(ctx context.Context, users repository.UserRepository, email string) error {
	existing, err := users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return errors.ErrEmailTaken
	}
	if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// changeLoginEmail moves the login of userID to email. A username that mirrored the old address follows it.
func changeLoginEmail(ctx context.Context, repos repository.Repositories, userID uuid.UUID, email string) error {
	if err := ensureEmailFree(ctx, repos.Users, email); err != nil {
		return err
	}
	user, err := repos.Users.FindByID(ctx, userID)
	if err != nil {
		return notFound(err, errors.ErrUserNotFound, "find user")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if sameEmail(user.Username, user.Email) {
		user.Username = email
	}
	user.Email = email
	return repos.Users.Update(ctx, user)
}
