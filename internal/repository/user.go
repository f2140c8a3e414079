package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shelfstack/api/internal/database"
	"github.com/shelfstack/api/internal/model"
)

// UserRepository handles user persistence
type UserRepository struct {
	db database.Database
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// CreateWithDefaultLibrary persists a new user and their starter library in
// one transaction, so a registered account can never exist without it.
func (r *UserRepository) CreateWithDefaultLibrary(ctx context.Context, user *model.User, library *model.Library) error {
	batch := database.NewAtomicBatch()
	batch.Add(`CREATE type::record($id) CONTENT {
		display_name: $display_name,
		username: $username,
		email: $email,
		hash: $hash,
		level: $level,
		created_at: time::now()
	}`, map[string]interface{}{
		"id":           user.ID.String(),
		"display_name": user.DisplayName,
		"username":     user.Username,
		"email":        user.Email,
		"hash":         user.Hash,
		"level":        string(user.Level),
	})
	batch.Add(`CREATE type::record($id) CONTENT {
		owner_id: $owner,
		title: $title,
		description: $description,
		book_ids: []
	}`, map[string]interface{}{
		"id":          library.ID.String(),
		"owner":       user.ID.String(),
		"title":       library.Title,
		"description": library.Description,
	})

	if err := batch.Execute(ctx, r.db); err != nil {
		if isUniqueConstraintError(err) {
			return database.ErrDuplicate
		}
		return fmt.Errorf("create user with library: %w", err)
	}
	return nil
}

// GetByID retrieves a user by reference. Returns (nil, nil) if absent.
func (r *UserRepository) GetByID(ctx context.Context, id model.ID) (*model.User, error) {
	result, err := r.db.QueryOne(ctx, `SELECT * FROM type::record($id)`, idVars(id))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return parseUser(result)
}

// GetByUsername retrieves a user by username. Returns (nil, nil) if absent.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	result, err := r.db.QueryOne(ctx, `SELECT * FROM user WHERE username = $username LIMIT 1`,
		map[string]interface{}{"username": username})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return parseUser(result)
}

// GetByEmail retrieves a user by email. Returns (nil, nil) if absent.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	result, err := r.db.QueryOne(ctx, `SELECT * FROM user WHERE email = $email LIMIT 1`,
		map[string]interface{}{"email": email})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return parseUser(result)
}

// List returns all users ordered by username.
func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	results, err := r.db.Query(ctx, `SELECT * FROM user ORDER BY username ASC`, nil)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	records := recordMaps(results)
	users := make([]*model.User, 0, len(records))
	for _, record := range records {
		user, err := parseUserMap(record)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// Delete removes a user record. Returns the number of records removed.
func (r *UserRepository) Delete(ctx context.Context, id model.ID) (int, error) {
	results, err := r.db.Query(ctx, `DELETE type::record($id) RETURN BEFORE`, idVars(id))
	if err != nil {
		return 0, fmt.Errorf("delete user: %w", err)
	}
	return len(queryRows(results)), nil
}

func parseUser(result interface{}) (*model.User, error) {
	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected user record type %T", result)
	}
	return parseUserMap(data)
}

func parseUserMap(data map[string]interface{}) (*model.User, error) {
	return &model.User{
		ID:          convertRecordID(data["id"]),
		DisplayName: getString(data, "display_name"),
		Username:    getString(data, "username"),
		Email:       getString(data, "email"),
		Hash:        getString(data, "hash"),
		Level:       model.UserLevel(getString(data, "level")),
		CreatedAt:   getTime(data, "created_at"),
	}, nil
}
