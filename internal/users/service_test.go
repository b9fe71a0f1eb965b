package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/atelier-pos/atelier/internal/auth"
)

type memoryRepo struct {
	nextID int64
	users  map[int64]User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, users: make(map[int64]User)}
}

func (m *memoryRepo) List(context.Context) ([]User, error) {
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *memoryRepo) Create(_ context.Context, username, passwordHash, role string) (int64, error) {
	for _, u := range m.users {
		if u.Username == username {
			return 0, ErrDuplicateUsername
		}
	}
	u := User{ID: m.nextID, Username: username, Role: role, PasswordHash: passwordHash, CreatedAt: time.Now()}
	m.nextID++
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, passwordHash, role *string) error {
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	if role != nil {
		u.Role = *role
	}
	m.users[id] = u
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func TestCreateHashesPassword(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	u, err := svc.Create(context.Background(), CreateInput{Username: "maria", Password: "hunter22", Role: auth.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, "maria", u.Username)
	require.Equal(t, auth.RoleAdmin, u.Role)

	stored := repo.users[u.ID]
	require.NotEqual(t, "hunter22", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter22")))
}

func TestCreateDefaultsToStaff(t *testing.T) {
	svc := NewService(newMemoryRepo())

	u, err := svc.Create(context.Background(), CreateInput{Username: "jo", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, auth.RoleStaff, u.Role)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), CreateInput{Username: "  ", Password: "secret1"})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), CreateInput{Username: "jo", Password: "short"})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), CreateInput{Username: "jo", Password: "secret1", Role: "owner"})
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestCreateRejectsDuplicateUsername(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), CreateInput{Username: "jo", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{Username: "jo", Password: "secret2"})
	require.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestUpdatePasswordAndRole(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreateInput{Username: "jo", Password: "secret1"})
	require.NoError(t, err)
	oldHash := repo.users[created.ID].PasswordHash

	password := "newsecret"
	role := auth.RoleAdmin
	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{Password: &password, Role: &role})
	require.NoError(t, err)
	require.Equal(t, auth.RoleAdmin, updated.Role)
	require.NotEqual(t, oldHash, repo.users[created.ID].PasswordHash)

	short := "tiny"
	_, err = svc.Update(context.Background(), created.ID, UpdateInput{Password: &short})
	require.Error(t, err)

	bad := "owner"
	_, err = svc.Update(context.Background(), created.ID, UpdateInput{Role: &bad})
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestDeleteMissingUser(t *testing.T) {
	svc := NewService(newMemoryRepo())
	require.ErrorIs(t, svc.Delete(context.Background(), 99), ErrNotFound)
}
