package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"duothan/internal/common/db"
)

type TeamRole string

const (
	TeamRoleTeam  TeamRole = "team"
	TeamRoleAdmin TeamRole = "admin"
)

type Team struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         TeamRole
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type TeamRepository interface {
	Create(ctx context.Context, tx db.Transaction, team *Team) (int64, error)
	GetByID(ctx context.Context, tx db.Transaction, id int64) (*Team, error)
	GetByName(ctx context.Context, tx db.Transaction, name string) (*Team, error)
	SetActive(ctx context.Context, tx db.Transaction, teamID int64, active bool) error
}

type MySQLTeamRepository struct {
	db db.Database
}

func NewTeamRepository(database db.Database) TeamRepository {
	return &MySQLTeamRepository{db: database}
}

const teamColumns = "id, name, email, password_hash, role, is_active, created_at, updated_at"

func (r *MySQLTeamRepository) Create(ctx context.Context, tx db.Transaction, team *Team) (int64, error) {
	if team == nil {
		return 0, errors.New("team is nil")
	}

	role := team.Role
	if role == "" {
		role = TeamRoleTeam
	}

	query := "INSERT INTO teams (name, email, password_hash, role, is_active) VALUES (?, ?, ?, ?, ?)"
	result, err := db.GetQuerier(r.db, tx).Exec(ctx, query, team.Name, team.Email, team.PasswordHash, role, team.IsActive)
	if err != nil {
		if key, ok := db.UniqueViolation(err); ok {
			if strings.Contains(strings.ToLower(key), "name") {
				return 0, ErrTeamNameExists
			}
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return result.LastInsertId()
}

func (r *MySQLTeamRepository) GetByID(ctx context.Context, tx db.Transaction, id int64) (*Team, error) {
	query := "SELECT " + teamColumns + " FROM teams WHERE id = ?"
	return scanTeam(db.GetQuerier(r.db, tx).QueryRow(ctx, query, id))
}

func (r *MySQLTeamRepository) GetByName(ctx context.Context, tx db.Transaction, name string) (*Team, error) {
	query := "SELECT " + teamColumns + " FROM teams WHERE name = ?"
	return scanTeam(db.GetQuerier(r.db, tx).QueryRow(ctx, query, name))
}

func (r *MySQLTeamRepository) SetActive(ctx context.Context, tx db.Transaction, teamID int64, active bool) error {
	query := "UPDATE teams SET is_active = ?, updated_at = NOW() WHERE id = ?"
	result, err := db.GetQuerier(r.db, tx).Exec(ctx, query, active, teamID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTeamNotFound
	}
	return nil
}

func scanTeam(scanner db.Scanner) (*Team, error) {
	var team Team
	err := scanner.Scan(
		&team.ID,
		&team.Name,
		&team.Email,
		&team.PasswordHash,
		&team.Role,
		&team.IsActive,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}
