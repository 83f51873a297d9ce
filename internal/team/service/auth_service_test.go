package service

import (
	"context"
	"testing"
	"time"

	"duothan/internal/common/db"
	"duothan/internal/team/repository"
	pkgerrors "duothan/pkg/errors"

	"golang.org/x/crypto/bcrypt"
)

type fakeTeamRepository struct {
	teams  map[int64]*repository.Team
	byName map[string]int64
	nextID int64
}

func newFakeTeamRepository() *fakeTeamRepository {
	return &fakeTeamRepository{
		teams:  make(map[int64]*repository.Team),
		byName: make(map[string]int64),
		nextID: 1,
	}
}

func (f *fakeTeamRepository) Create(_ context.Context, _ db.Transaction, team *repository.Team) (int64, error) {
	if _, exists := f.byName[team.Name]; exists {
		return 0, repository.ErrTeamNameExists
	}
	id := f.nextID
	f.nextID++
	stored := *team
	stored.ID = id
	f.teams[id] = &stored
	f.byName[team.Name] = id
	return id, nil
}

func (f *fakeTeamRepository) GetByID(_ context.Context, _ db.Transaction, id int64) (*repository.Team, error) {
	team, ok := f.teams[id]
	if !ok {
		return nil, repository.ErrTeamNotFound
	}
	copied := *team
	return &copied, nil
}

func (f *fakeTeamRepository) GetByName(_ context.Context, _ db.Transaction, name string) (*repository.Team, error) {
	id, ok := f.byName[name]
	if !ok {
		return nil, repository.ErrTeamNotFound
	}
	return f.GetByID(context.Background(), nil, id)
}

func (f *fakeTeamRepository) SetActive(_ context.Context, _ db.Transaction, teamID int64, active bool) error {
	team, ok := f.teams[teamID]
	if !ok {
		return repository.ErrTeamNotFound
	}
	team.IsActive = active
	return nil
}

func newTestAuthService(repo repository.TeamRepository) *AuthService {
	return NewAuthService(repo, AuthServiceConfig{
		JWTSecret: []byte("test-secret"),
		JWTIssuer: "test",
		TokenTTL:  time.Hour,
	})
}

func TestRegisterAndAuthenticate(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(newFakeTeamRepository())

	result, err := svc.Register(context.Background(), RegisterInput{
		Name:     "byte-bandits",
		Email:    "team@example.com",
		Password: "s3curePass",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a token")
	}
	if result.Team.Role != repository.TeamRoleTeam {
		t.Errorf("expected team role, got %q", result.Team.Role)
	}

	info, err := svc.Authenticate(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if info.ID != result.Team.ID || info.Name != "byte-bandits" {
		t.Errorf("unexpected team info: %+v", info)
	}
}

func TestRegisterRejectsDuplicateName(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(newFakeTeamRepository())
	input := RegisterInput{Name: "byte-bandits", Password: "s3curePass"}

	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	_, err := svc.Register(context.Background(), input)
	if !pkgerrors.Is(err, pkgerrors.TeamNameAlreadyExists) {
		t.Errorf("expected TeamNameAlreadyExists, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(newFakeTeamRepository())

	_, err := svc.Register(context.Background(), RegisterInput{Name: "x", Password: "s3curePass"})
	if !pkgerrors.Is(err, pkgerrors.InvalidTeamName) {
		t.Errorf("expected InvalidTeamName, got %v", err)
	}

	_, err = svc.Register(context.Background(), RegisterInput{Name: "byte-bandits", Password: "short"})
	if !pkgerrors.Is(err, pkgerrors.InvalidPassword) {
		t.Errorf("expected InvalidPassword, got %v", err)
	}

	_, err = svc.Register(context.Background(), RegisterInput{Name: "byte-bandits", Password: "lettersonlyhere"})
	if !pkgerrors.Is(err, pkgerrors.InvalidPassword) {
		t.Errorf("expected InvalidPassword for no digits, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	repo := newFakeTeamRepository()
	svc := newTestAuthService(repo)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3curePass"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	teamID, err := repo.Create(context.Background(), nil, &repository.Team{
		Name:         "byte-bandits",
		PasswordHash: string(hash),
		Role:         repository.TeamRoleTeam,
		IsActive:     true,
	})
	if err != nil {
		t.Fatal(err)
	}

	result, err := svc.Login(context.Background(), LoginInput{Name: "byte-bandits", Password: "s3curePass"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.Team.ID != teamID {
		t.Errorf("expected team id %d, got %d", teamID, result.Team.ID)
	}

	_, err = svc.Login(context.Background(), LoginInput{Name: "byte-bandits", Password: "wrongPass1"})
	if !pkgerrors.Is(err, pkgerrors.InvalidCredentials) {
		t.Errorf("expected InvalidCredentials for wrong password, got %v", err)
	}

	_, err = svc.Login(context.Background(), LoginInput{Name: "no-such-team", Password: "s3curePass"})
	if !pkgerrors.Is(err, pkgerrors.InvalidCredentials) {
		t.Errorf("expected InvalidCredentials for unknown team, got %v", err)
	}
}

func TestLoginInactiveTeam(t *testing.T) {
	t.Parallel()

	repo := newFakeTeamRepository()
	svc := newTestAuthService(repo)

	hash, _ := bcrypt.GenerateFromPassword([]byte("s3curePass"), bcrypt.MinCost)
	_, err := repo.Create(context.Background(), nil, &repository.Team{
		Name:         "dormant",
		PasswordHash: string(hash),
		IsActive:     false,
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Login(context.Background(), LoginInput{Name: "dormant", Password: "s3curePass"})
	if !pkgerrors.Is(err, pkgerrors.TeamInactive) {
		t.Errorf("expected TeamInactive, got %v", err)
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(newFakeTeamRepository())

	if _, err := svc.Authenticate(context.Background(), ""); !pkgerrors.Is(err, pkgerrors.TokenInvalid) {
		t.Errorf("expected TokenInvalid for empty token, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "not-a-jwt"); !pkgerrors.Is(err, pkgerrors.TokenInvalid) {
		t.Errorf("expected TokenInvalid for garbage token, got %v", err)
	}

	other := NewAuthService(newFakeTeamRepository(), AuthServiceConfig{
		JWTSecret: []byte("other-secret"),
		JWTIssuer: "test",
		TokenTTL:  time.Hour,
	})
	result, err := other.Register(context.Background(), RegisterInput{Name: "byte-bandits", Password: "s3curePass"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Authenticate(context.Background(), result.Token); !pkgerrors.Is(err, pkgerrors.TokenInvalid) {
		t.Errorf("expected TokenInvalid for foreign signature, got %v", err)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	t.Parallel()

	repo := newFakeTeamRepository()
	svc := NewAuthService(repo, AuthServiceConfig{
		JWTSecret: []byte("test-secret"),
		JWTIssuer: "test",
		TokenTTL:  -time.Minute,
	})

	result, err := svc.Register(context.Background(), RegisterInput{Name: "byte-bandits", Password: "s3curePass"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Authenticate(context.Background(), result.Token); !pkgerrors.Is(err, pkgerrors.TokenExpired) {
		t.Errorf("expected TokenExpired, got %v", err)
	}
}
