package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"duothan/internal/team/repository"
	pkgerrors "duothan/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 24 * time.Hour

// AuthServiceConfig holds configuration for AuthService.
type AuthServiceConfig struct {
	JWTSecret []byte
	JWTIssuer string
	TokenTTL  time.Duration
}

// AuthService handles team registration, login and token validation.
type AuthService struct {
	teams  repository.TeamRepository
	config AuthServiceConfig
}

// NewAuthService creates a new AuthService.
func NewAuthService(teams repository.TeamRepository, cfg AuthServiceConfig) *AuthService {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "duothan"
	}
	return &AuthService{teams: teams, config: cfg}
}

// RegisterInput represents input for team registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput represents input for team login.
type LoginInput struct {
	Name     string
	Password string
}

// TeamInfo represents basic team info for auth responses.
type TeamInfo struct {
	ID   int64
	Name string
	Role repository.TeamRole
}

// AuthResult represents the result of auth operations.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	Team      TeamInfo
}

type tokenClaims struct {
	Role      string `json:"role"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Register creates a new team and issues a token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	if err := validateTeamName(input.Name); err != nil {
		return AuthResult{}, err
	}
	if err := validatePassword(input.Password); err != nil {
		return AuthResult{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, pkgerrors.Wrap(fmt.Errorf("hash password failed: %w", err), pkgerrors.InternalServerError)
	}

	team := &repository.Team{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(passwordHash),
		Role:         repository.TeamRoleTeam,
		IsActive:     true,
	}
	teamID, err := s.teams.Create(ctx, nil, team)
	if err != nil {
		if stderrors.Is(err, repository.ErrTeamNameExists) {
			return AuthResult{}, pkgerrors.New(pkgerrors.TeamNameAlreadyExists)
		}
		return AuthResult{}, pkgerrors.Wrap(fmt.Errorf("create team failed: %w", err), pkgerrors.DatabaseError)
	}
	team.ID = teamID

	return s.issueToken(team)
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	if err := validateTeamName(input.Name); err != nil {
		return AuthResult{}, pkgerrors.New(pkgerrors.InvalidCredentials)
	}
	if err := validateLoginPassword(input.Password); err != nil {
		return AuthResult{}, pkgerrors.New(pkgerrors.InvalidCredentials)
	}

	team, err := s.teams.GetByName(ctx, nil, input.Name)
	if err != nil {
		if stderrors.Is(err, repository.ErrTeamNotFound) {
			return AuthResult{}, pkgerrors.New(pkgerrors.InvalidCredentials)
		}
		return AuthResult{}, pkgerrors.Wrap(fmt.Errorf("get team failed: %w", err), pkgerrors.DatabaseError)
	}

	if !team.IsActive {
		return AuthResult{}, pkgerrors.New(pkgerrors.TeamInactive)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(team.PasswordHash), []byte(input.Password)); err != nil {
		return AuthResult{}, pkgerrors.New(pkgerrors.InvalidCredentials)
	}

	return s.issueToken(team)
}

// Authenticate validates a raw bearer token and returns the team it names.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (TeamInfo, error) {
	if raw == "" {
		return TeamInfo{}, pkgerrors.New(pkgerrors.TokenInvalid)
	}
	claims, err := s.parseToken(raw)
	if err != nil {
		return TeamInfo{}, err
	}
	teamID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return TeamInfo{}, pkgerrors.New(pkgerrors.TokenInvalid)
	}

	team, err := s.teams.GetByID(ctx, nil, teamID)
	if err != nil {
		if stderrors.Is(err, repository.ErrTeamNotFound) {
			return TeamInfo{}, pkgerrors.New(pkgerrors.TokenInvalid)
		}
		return TeamInfo{}, pkgerrors.Wrap(fmt.Errorf("get team failed: %w", err), pkgerrors.DatabaseError)
	}
	if !team.IsActive {
		return TeamInfo{}, pkgerrors.New(pkgerrors.TeamInactive)
	}

	return TeamInfo{ID: team.ID, Name: team.Name, Role: team.Role}, nil
}

// GetTeam returns the team for an authenticated id.
func (s *AuthService) GetTeam(ctx context.Context, teamID int64) (*repository.Team, error) {
	team, err := s.teams.GetByID(ctx, nil, teamID)
	if err != nil {
		if stderrors.Is(err, repository.ErrTeamNotFound) {
			return nil, pkgerrors.New(pkgerrors.TeamNotFound)
		}
		return nil, pkgerrors.Wrap(fmt.Errorf("get team failed: %w", err), pkgerrors.DatabaseError)
	}
	return team, nil
}

func (s *AuthService) issueToken(team *repository.Team) (AuthResult, error) {
	if len(s.config.JWTSecret) == 0 {
		return AuthResult{}, pkgerrors.New(pkgerrors.TokenGenerationFailed)
	}

	now := time.Now()
	expiresAt := now.Add(s.config.TokenTTL)
	claims := tokenClaims{
		Role:      string(team.Role),
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.JWTIssuer,
			Subject:   strconv.FormatInt(team.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.JWTSecret)
	if err != nil {
		return AuthResult{}, pkgerrors.Wrap(fmt.Errorf("sign token failed: %w", err), pkgerrors.TokenGenerationFailed)
	}

	return AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Team:      TeamInfo{ID: team.ID, Name: team.Name, Role: team.Role},
	}, nil
}

func (s *AuthService) parseToken(raw string) (*tokenClaims, error) {
	if len(s.config.JWTSecret) == 0 {
		return nil, pkgerrors.New(pkgerrors.TokenInvalid)
	}
	parsed, err := jwt.ParseWithClaims(raw, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.config.JWTSecret, nil
	})
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, pkgerrors.New(pkgerrors.TokenExpired)
		}
		return nil, pkgerrors.New(pkgerrors.TokenInvalid)
	}
	if !parsed.Valid {
		return nil, pkgerrors.New(pkgerrors.TokenInvalid)
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.TokenInvalid)
	}
	if claims.Issuer != s.config.JWTIssuer {
		return nil, pkgerrors.New(pkgerrors.TokenInvalid)
	}
	if claims.TokenType != "access" {
		return nil, pkgerrors.New(pkgerrors.TokenInvalid)
	}
	if claims.Subject == "" {
		return nil, pkgerrors.New(pkgerrors.TokenInvalid)
	}
	return claims, nil
}
