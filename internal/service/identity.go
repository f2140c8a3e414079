package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/shelfstack/api/internal/database"
	"github.com/shelfstack/api/internal/model"
)

// DefaultLibraryTitle is given to the library every new account starts with.
const DefaultLibraryTitle = "New Library"

var (
	usernamePattern = regexp.MustCompile(`^\w{3,64}$`)
	emailPattern    = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)
	letterPattern   = regexp.MustCompile(`[a-zA-Z]`)
	digitPattern    = regexp.MustCompile(`[0-9]`)
)

// IdentityService manages accounts: registration, credential checks and
// removal with full cascade over the account's records.
type IdentityService struct {
	users      UserRepository
	books      BookRepository
	libraries  LibraryRepository
	bcryptCost int
}

// NewIdentityService creates a new identity service
func NewIdentityService(users UserRepository, books BookRepository, libraries LibraryRepository, bcryptCost int) *IdentityService {
	if bcryptCost == 0 {
		bcryptCost = 12
	}
	return &IdentityService{
		users:      users,
		books:      books,
		libraries:  libraries,
		bcryptCost: bcryptCost,
	}
}

// Register validates the supplied credentials and creates the account
// together with its starter library. Username and email are stored
// lowercased; the submitted casing of the username is kept as display name.
func (s *IdentityService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if !validPassword(password) {
		return nil, ErrInvalidPassword
	}

	normalizedUsername := strings.ToLower(username)
	normalizedEmail := strings.ToLower(email)

	if existing, err := s.users.GetByUsername(ctx, normalizedUsername); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	} else if existing != nil {
		return nil, ErrUsernameTaken
	}
	if existing, err := s.users.GetByEmail(ctx, normalizedEmail); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	} else if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:          model.NewID("user"),
		DisplayName: username,
		Username:    normalizedUsername,
		Email:       normalizedEmail,
		Hash:        string(hash),
		Level:       model.UserLevelUser,
	}
	library := &model.Library{
		ID:      model.NewID("library"),
		OwnerID: user.ID,
		Title:   DefaultLibraryTitle,
		BookIDs: []model.ID{},
	}

	if err := s.users.CreateWithDefaultLibrary(ctx, user, library); err != nil {
		// Lost the race with a concurrent registration; the unique index
		// is authoritative. Look the conflict up to report which value it
		// was on.
		if errors.Is(err, database.ErrDuplicate) {
			if existing, lookupErr := s.users.GetByEmail(ctx, normalizedEmail); lookupErr == nil && existing != nil {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID.Hex()),
		slog.String("username", user.Username),
	)
	return user.Public(), nil
}

// Authorize checks a credential pair. The login value may be a username or,
// when it contains an @, an email address. Lookup misses and hash mismatches
// are indistinguishable to the caller.
func (s *IdentityService) Authorize(ctx context.Context, login, password string) (*model.User, error) {
	login = strings.ToLower(login)

	var user *model.User
	var err error
	if strings.Contains(login, "@") {
		user, err = s.users.GetByEmail(ctx, login)
	} else {
		user, err = s.users.GetByUsername(ctx, login)
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user.Public(), nil
}

// GetLevel returns the permission level of the given account.
func (s *IdentityService) GetLevel(ctx context.Context, userID string) (model.UserLevel, error) {
	user, err := s.getByExternalID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Level, nil
}

// GetUser looks an account up by username.
func (s *IdentityService) GetUser(ctx context.Context, username string) (*model.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.ToLower(username))
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user.Public(), nil
}

// GetUserByID looks an account up by its external identifier.
func (s *IdentityService) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.getByExternalID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// GetUsers returns every account. An empty store is reported as not found
// rather than as an empty list.
func (s *IdentityService) GetUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	for i, u := range users {
		users[i] = u.Public()
	}
	return users, nil
}

// RemoveUser deletes an account and everything it owns: its libraries, its
// books, and every reference to those books held in other users' libraries.
// Only the account itself or an admin may do this.
func (s *IdentityService) RemoveUser(ctx context.Context, actor *model.User, userID string) error {
	id, ok := model.ParseID("user", userID)
	if !ok {
		return ErrInvalidUserID
	}
	if !actor.CanModify(id) {
		return ErrNotOwner
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	// Order matters: pull the user's books out of everyone's libraries
	// before the book records disappear.
	bookIDs, err := s.books.DeleteByOwner(ctx, id)
	if err != nil {
		return fmt.Errorf("delete books: %w", err)
	}
	for _, bookID := range bookIDs {
		matched, modified, err := s.libraries.RemoveBookFromAll(ctx, bookID)
		if err != nil {
			return fmt.Errorf("unlink book %s: %w", bookID.Hex(), err)
		}
		if matched != modified {
			slog.Warn("book unlink incomplete",
				slog.String("book_id", bookID.Hex()),
				slog.Int("matched", matched),
				slog.Int("modified", modified),
			)
		}
	}

	if _, err := s.libraries.DeleteByOwner(ctx, id); err != nil {
		return fmt.Errorf("delete libraries: %w", err)
	}

	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if deleted == 0 {
		return ErrUserNotFound
	}

	slog.Info("user removed",
		slog.String("user_id", id.Hex()),
		slog.String("removed_by", actor.ID.Hex()),
		slog.Int("books_deleted", len(bookIDs)),
	)
	return nil
}

func (s *IdentityService) getByExternalID(ctx context.Context, userID string) (*model.User, error) {
	id, ok := model.ParseID("user", userID)
	if !ok {
		return nil, ErrInvalidUserID
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// validPassword checks the password policy: 8 to 128 characters containing
// at least one letter and one digit.
func validPassword(password string) bool {
	if len(password) < 8 || len(password) > 128 {
		return false
	}
	return letterPattern.MatchString(password) && digitPattern.MatchString(password)
}
