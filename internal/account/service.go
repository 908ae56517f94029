package account

import (
	"context"
	"errors"

	"resume-portal/internal/shared/auth"
	"resume-portal/internal/shared/util"
	"resume-portal/internal/users"
)

// SignupForm is the password registration form.
type SignupForm struct {
	Username string `form:"username" binding:"required,notblank,max=150"`
	FullName string `form:"full_name" binding:"max=150"`
	Email    string `form:"email" binding:"omitempty,email"`
	Password string `form:"password" binding:"required,min=8,max=72"`
}

// LoginForm is the password login form.
type LoginForm struct {
	Username string `form:"username" binding:"required,notblank"`
	Password string `form:"password" binding:"required"`
}

type Service struct {
	Users *users.Service
}

func NewService(userSvc *users.Service) *Service {
	return &Service{Users: userSvc}
}

// SignUp registers a password account. Known conflicts are reported per field.
func (s *Service) SignUp(ctx context.Context, form SignupForm) (users.User, map[string]string, error) {
	if s == nil || s.Users == nil {
		return users.User{}, nil, errors.New("account service not configured")
	}
	user, err := s.Users.Register(ctx, users.Registration{
		Username: form.Username,
		Email:    form.Email,
		FullName: form.FullName,
		Password: form.Password,
	})
	switch {
	case err == nil:
		return user, nil, nil
	case errors.Is(err, users.ErrUsernameTaken):
		return users.User{}, map[string]string{"username": "A user with that username already exists."}, nil
	case errors.Is(err, users.ErrEmailTaken):
		return users.User{}, map[string]string{"email": "This email is already registered."}, nil
	case errors.Is(err, auth.ErrPasswordTooLong):
		return users.User{}, map[string]string{"password": "Ensure this password has at most 72 bytes."}, nil
	case errors.Is(err, util.ErrInvalidUsername):
		return users.User{}, map[string]string{"username": "Use letters, digits and @/./+/-/_ only."}, nil
	default:
		return users.User{}, nil, err
	}
}

// LogIn checks credentials. A mismatch is reported as a form error.
func (s *Service) LogIn(ctx context.Context, form LoginForm) (users.User, map[string]string, error) {
	if s == nil || s.Users == nil {
		return users.User{}, nil, errors.New("account service not configured")
	}
	user, err := s.Users.Authenticate(ctx, form.Username, form.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			return users.User{}, map[string]string{"form": "Please enter a correct username and password."}, nil
		}
		return users.User{}, nil, err
	}
	return user, nil, nil
}
