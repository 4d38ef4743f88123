package services

import (
	"context"
	"errors"
	"net/mail"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/foodgram-backend/internal/auth"
	"github.com/tbourn/foodgram-backend/internal/domain"
	"github.com/tbourn/foodgram-backend/internal/repo"
)

var usernameRE = regexp.MustCompile(`^[\w.@+-]+$`)

// UserService handles registration and user reads. Every read shape carries
// is_subscribed relative to the caller.
type UserService struct {
	DB *gorm.DB
}

// Register creates an account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, in CreateUser) (*CreatedUser, error) {
	v := &ValidationError{}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		v.Add("email", "enter a valid email address")
	}
	if !usernameRE.MatchString(username) {
		v.Add("username", "letters, digits and @/./+/-/_ only")
	}
	if strings.EqualFold(username, "me") {
		v.Add("username", "this username is reserved")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		v.Add("first_name", "this field may not be blank")
	}
	if strings.TrimSpace(in.LastName) == "" {
		v.Add("last_name", "this field may not be blank")
	}
	if len(in.Password) < 8 {
		v.Add("password", "ensure this field has at least 8 characters")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Email:        email,
		Username:     username,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hash,
	}
	if err := repo.CreateUser(ctx, s.DB, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	return &CreatedUser{Email: u.Email, ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}, nil
}

// Get returns a user as seen by actor.
func (s *UserService) Get(ctx context.Context, actor domain.Actor, id uint) (*ReadUser, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	subs, err := repo.SubscribedAmong(ctx, s.DB, actor.UserID, []uint{u.ID})
	if err != nil {
		return nil, err
	}
	ru := ToReadUser(*u, subs[u.ID])
	return &ru, nil
}

// Me returns the caller's own profile.
func (s *UserService) Me(ctx context.Context, actor domain.Actor) (*ReadUser, error) {
	if err := checkAccess(domain.MemberAccess(actor)); err != nil {
		return nil, err
	}
	u, err := s.Get(ctx, actor, actor.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrUnauthenticated
	}
	return u, err
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, actor domain.Actor, p Paging) (Page[ReadUser], error) {
	rows, total, err := repo.ListUsers(ctx, s.DB, p.Offset, p.Limit)
	if err != nil {
		return Page[ReadUser]{}, err
	}
	ids := make([]uint, 0, len(rows))
	for _, u := range rows {
		ids = append(ids, u.ID)
	}
	subs, err := repo.SubscribedAmong(ctx, s.DB, actor.UserID, ids)
	if err != nil {
		return Page[ReadUser]{}, err
	}
	out := make([]ReadUser, 0, len(rows))
	for _, u := range rows {
		out = append(out, ToReadUser(u, subs[u.ID]))
	}
	return Page[ReadUser]{Count: total, Results: out}, nil
}

// Lookup resolves an authenticated user id to an actor, reporting whether
// the account exists.
func (s *UserService) Lookup(ctx context.Context, id uint) (domain.Actor, bool, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.Actor{}, false, nil
		}
		return domain.Actor{}, false, err
	}
	return domain.Actor{UserID: u.ID, IsAdmin: u.IsAdmin}, true, nil
}
