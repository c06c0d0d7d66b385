package inmemdb

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/auth"
	"github.com/trezcool/aulavirtual/core/user"
)

type (
	userRecord struct {
		user.User
		passwordHash []byte
	}

	resetToken struct {
		userID string
		used   bool
	}
)

func hashPassword(pwd string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), PasswordHashCost)
	return hash, errors.Wrap(err, "hashing password")
}

func (db *DB) findUserByEmail(email string) *userRecord {
	email = core.CleanString(email, true /* lower */)
	for _, rec := range db.users {
		if rec.Email == email {
			return rec
		}
	}
	return nil
}

func (db *DB) CreateUser(data user.NewUser) (user.User, error) {
	hash, err := hashPassword(data.Password)
	if err != nil {
		return user.User{}, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.findUserByEmail(data.Email) != nil {
		return user.User{}, ErrDuplicate
	}
	role := data.Role
	if role == "" {
		role = auth.RoleStudent
	}
	now := db.now()
	rec := &userRecord{
		User: user.User{
			ID:        newID(),
			Email:     core.CleanString(data.Email, true /* lower */),
			FirstName: data.FirstName,
			LastName:  data.LastName,
			Role:      role,
			Status:    user.StatusActive,
			Language:  data.Language,
			Timezone:  data.Timezone,
			Phone:     data.Phone,
			CreatedAt: now,
			UpdatedAt: now,
		},
		passwordHash: hash,
	}
	if rec.Language == "" {
		rec.Language = "es"
	}
	db.users[rec.ID] = rec
	return rec.User, nil
}

// Authenticate checks the credentials and records the login.
// Inactive accounts are returned with their status so callers can refuse them.
func (db *DB) Authenticate(email, pwd string) (user.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rec := db.findUserByEmail(email)
	if rec == nil {
		return user.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(pwd)); err != nil {
		return user.User{}, ErrInvalidCredentials
	}
	if rec.IsActive() {
		rec.LastLogin = db.now()
	}
	return rec.User, nil
}

func (db *DB) GetUser(id string) (user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if rec, ok := db.users[id]; ok {
		return rec.User, nil
	}
	return user.User{}, ErrNotFound
}

func (db *DB) QueryUsers(filter user.QueryFilter) []user.User {
	db.mu.RLock()
	defer db.mu.RUnlock()

	search := core.CleanString(filter.Search, true /* lower */)
	users := make([]user.User, 0, len(db.users))
	for _, rec := range db.users {
		if filter.Role != "" && rec.Role != filter.Role {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(rec.Email+" "+rec.FullName()), search) {
			continue
		}
		users = append(users, rec.User)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	start, end := paginate(len(users), filter.Skip, filter.Limit)
	return users[start:end]
}

func (db *DB) UpdateUser(id string, data user.UpdateUser) (user.User, error) {
	var hash []byte
	if data.Password != nil {
		var err error
		if hash, err = hashPassword(*data.Password); err != nil {
			return user.User{}, err
		}
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	rec, ok := db.users[id]
	if !ok {
		return user.User{}, ErrNotFound
	}
	// only save set fields
	if data.FirstName != nil {
		rec.FirstName = core.CleanString(*data.FirstName)
	}
	if data.LastName != nil {
		rec.LastName = core.CleanString(*data.LastName)
	}
	if data.Role != nil {
		rec.Role = *data.Role
	}
	if data.Status != nil {
		rec.Status = *data.Status
	}
	if data.Language != nil {
		rec.Language = *data.Language
	}
	if data.Timezone != nil {
		rec.Timezone = *data.Timezone
	}
	if data.AvatarURL != nil {
		rec.AvatarURL = *data.AvatarURL
	}
	if data.Phone != nil {
		rec.Phone = *data.Phone
	}
	if hash != nil {
		rec.passwordHash = hash
	}
	rec.UpdatedAt = db.now()
	return rec.User, nil
}

// BulkUpdateUsers applies fn to every existing user of ids and returns how many were updated.
func (db *DB) BulkUpdateUsers(ids []string, fn func(*user.User)) int {
	db.mu.Lock()
	defer db.mu.Unlock()

	var n int
	now := db.now()
	for _, id := range ids {
		if rec, ok := db.users[id]; ok {
			fn(&rec.User)
			rec.UpdatedAt = now
			n++
		}
	}
	return n
}

// CreateResetToken returns ErrNotFound for unknown emails; callers must not leak it.
func (db *DB) CreateResetToken(email string) (string, user.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rec := db.findUserByEmail(email)
	if rec == nil {
		return "", user.User{}, ErrNotFound
	}
	token := newID()
	db.resetTokens[token] = &resetToken{userID: rec.ID}
	return token, rec.User, nil
}

// ResetPassword consumes token; a token works once.
func (db *DB) ResetPassword(token, pwd string) error {
	hash, err := hashPassword(pwd)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	rt, ok := db.resetTokens[token]
	if !ok || rt.used {
		return ErrNotFound
	}
	rec, ok := db.users[rt.userID]
	if !ok {
		return ErrNotFound
	}
	rec.passwordHash = hash
	rec.UpdatedAt = db.now()
	rt.used = true
	return nil
}
