package memory

import (
	"context"

	"github.com/avstrong/discovertours/internal/apperr"
	"github.com/avstrong/discovertours/internal/auth"
)

func (db *DB) GetUser(_ context.Context, id string) (*auth.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[id]
	if !ok {
		return nil, apperr.NotFoundf("user %s", id)
	}

	c := *u

	return &c, nil
}

func (db *DB) GetUserByUsername(_ context.Context, username string) (*auth.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			c := *u

			return &c, nil
		}
	}

	return nil, apperr.NotFoundf("user %s", username)
}

func (db *DB) usernameTaken(username, exceptID string) bool {
	for _, u := range db.users {
		if u.Username == username && u.ID != exceptID {
			return true
		}
	}

	return false
}

func (db *DB) InsertUser(ctx context.Context, u *auth.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.users[u.ID]; ok || db.usernameTaken(u.Username, "") {
		return apperr.Conflictf("user %s already exists", u.Username)
	}

	c := *u

	return db.apply(ctx, func() {
		db.users[c.ID] = &c
	})
}

func (db *DB) UpdateUser(ctx context.Context, u *auth.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.users[u.ID]; !ok {
		return apperr.NotFoundf("user %s", u.ID)
	}

	if db.usernameTaken(u.Username, u.ID) {
		return apperr.Conflictf("username %q is taken", u.Username)
	}

	c := *u

	return db.apply(ctx, func() {
		db.users[c.ID] = &c
	})
}
