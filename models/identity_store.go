package models

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mediavault/mediavault/utils"
)

var (
	// ErrUsernameTaken is returned when signing up with an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials covers both unknown username and wrong password
	// so callers cannot distinguish the two.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserNotFound is returned when a token's subject no longer resolves.
	ErrUserNotFound = errors.New("user not found")
)

const userCachePrefix = "cache:user:byname:"

// IdentityStore persists users and checks credentials. It exposes no update
// or delete operations; users are immutable once created.
type IdentityStore struct {
	db     *gorm.DB
	hasher utils.PasswordHasher
}

// NewIdentityStore creates an IdentityStore backed by db, hashing passwords
// with the given hasher.
func NewIdentityStore(db *gorm.DB, hasher utils.PasswordHasher) *IdentityStore {
	return &IdentityStore{db: db, hasher: hasher}
}

// CreateUser registers a new user, storing only the salted one-way hash of
// the password. Usernames are matched exactly and case-sensitively.
func (s *IdentityStore) CreateUser(username, password string) (*User, error) {
	if _, err := s.lookup(username); err == nil {
		return nil, ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.db.Create(user).Error; err != nil {
		// Concurrent signup can slip past the lookup; the unique index on
		// username is the final arbiter.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

// VerifyCredentials resolves a user by exact username and checks the
// password. Unknown user and wrong password yield the same error.
func (s *IdentityStore) VerifyCredentials(username, password string) (*User, error) {
	user, err := s.lookup(username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// FindByUsername resolves a token subject to a user row, reading through the
// cache. Users are immutable, so cached entries cannot go stale.
func (s *IdentityStore) FindByUsername(username string) (*User, error) {
	var cached User
	if utils.CacheGetJSON(userCachePrefix+username, &cached) && cached.Username == username {
		return &cached, nil
	}

	user, err := s.lookup(username)
	if err != nil {
		return nil, err
	}
	utils.CacheSetJSON(userCachePrefix+username, user, time.Hour)
	return user, nil
}

func (s *IdentityStore) lookup(username string) (*User, error) {
	var user User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	// MySQL's default collation compares case-insensitively; the contract is
	// exact match.
	if user.Username != username {
		return nil, ErrUserNotFound
	}
	return &user, nil
}
