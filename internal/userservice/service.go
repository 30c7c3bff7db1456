// Package userservice manages business logic layer of users.
package userservice

import (
	"context"
	"errors"
	"strings"

	"github.com/go-petr/cheque-desk/internal/domain"
	"github.com/go-petr/cheque-desk/pkg/errorspkg"
	"github.com/go-petr/cheque-desk/pkg/passpkg"
	"github.com/go-petr/cheque-desk/pkg/validatorpkg"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by user service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package userservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error)
	Get(ctx context.Context, username string) (domain.User, error)
}

// Service facilitates user service layer logic.
type Service struct {
	repo     Repo
	validate *validator.Validate
}

// New return user service struct to manage user bussines logic.
func New(ur Repo) *Service {
	return &Service{
		repo:     ur,
		validate: validatorpkg.New(),
	}
}

// NewUserWihtoutPassword returns user with removed sensitive data.
func NewUserWihtoutPassword(u domain.User) domain.UserWihtoutPassword {
	return domain.UserWihtoutPassword{
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

type createInput struct {
	Username string `json:"username" validate:"required,alphanum,max=50"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required,max=120"`
	Role     string `json:"role" validate:"oneof=Admin User"`
}

// Create validates the input, hashes the password and stores the user.
func (s *Service) Create(ctx context.Context, username, password, fullname, role string) (domain.UserWihtoutPassword, error) {
	l := zerolog.Ctx(ctx)

	var result domain.UserWihtoutPassword

	in := createInput{
		Username: strings.TrimSpace(username),
		Password: password,
		FullName: strings.TrimSpace(fullname),
		Role:     role,
	}

	if err := s.validate.Struct(in); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return result, errorspkg.ErrInternal
		}

		verr := &domain.ValidationError{}
		for _, fe := range ve {
			verr.Add(fe.Field(), validatorpkg.GetErrorMsg(fe))
		}

		return result, verr
	}

	hashedPassword, err := passpkg.Hash(in.Password)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	arg := domain.CreateUserParams{
		Username:       in.Username,
		HashedPassword: hashedPassword,
		FullName:       in.FullName,
		Role:           in.Role,
	}

	gotUser, err := s.repo.Create(ctx, arg)
	if err != nil {
		return result, err
	}

	result = NewUserWihtoutPassword(gotUser)

	return result, nil
}

// CheckPassword checks if the password is valid for the given username.
func (s *Service) CheckPassword(ctx context.Context, username, pass string) (domain.UserWihtoutPassword, error) {
	l := zerolog.Ctx(ctx)

	var response domain.UserWihtoutPassword

	gotUser, err := s.repo.Get(ctx, username)
	if err != nil {
		return response, err
	}

	err = passpkg.Check(pass, gotUser.HashedPassword)
	if err != nil {
		l.Warn().Err(err).Send()
		return response, domain.ErrWrongPassword
	}

	response = NewUserWihtoutPassword(gotUser)

	return response, nil
}
