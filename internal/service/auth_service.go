package service

import (
	"context"
	"fmt"
	"time"

	"doc-chat-be/internal/dto"
	"doc-chat-be/internal/entity"
	"doc-chat-be/internal/pkg/mailer"
	"doc-chat-be/internal/repository/specification"
	"doc-chat-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenExpiry = 24 * time.Hour

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	uowFactory   unitofwork.RepositoryFactory
	emailService mailer.IEmailService
	jwtSecret    string
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, emailService mailer.IEmailService, jwtSecret string) IAuthService {
	return &authService{
		uowFactory:   uowFactory,
		emailService: emailService,
		jwtSecret:    jwtSecret,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         "user",
		CreatedAt:    time.Now(),
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	// Mail delivery is auxiliary, the registration must not wait on SMTP
	if s.emailService != nil {
		go func() {
			if mailErr := s.emailService.SendWelcome(user.Email, user.FullName); mailErr != nil {
				fmt.Printf("Error sending welcome email: %v\n", mailErr)
			}
		}()
	}

	return &dto.RegisterResponse{
		Id:       user.Id,
		Email:    user.Email,
		FullName: user.FullName,
	}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(accessTokenExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: signedToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(accessTokenExpiry.Seconds()),
	}, nil
}
