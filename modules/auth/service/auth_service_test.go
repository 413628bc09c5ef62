package service

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"go-event-cms/core/constants"
	"go-event-cms/core/errors"
	"go-event-cms/core/utils"
	"go-event-cms/modules/auth/dto"
	"go-event-cms/modules/auth/entity"
)

type fakeUserRepo struct {
	users map[bson.ObjectID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[bson.ObjectID]*entity.User)}
}

func (f *fakeUserRepo) Insert(_ context.Context, user *entity.User) error {
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id bson.ObjectID) (*entity.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	f.users[user.ID] = user
	return nil
}

func addUser(t *testing.T, repo *fakeUserRepo, privileges map[string]bool) *entity.User {
	t.Helper()
	hash, err := utils.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user := &entity.User{
		ID:           bson.NewObjectID(),
		Email:        "editor@example.org",
		FullName:     "Editor",
		PasswordHash: hash,
		Privileges:   privileges,
	}
	repo.users[user.ID] = user
	return user
}

func TestCan(t *testing.T) {
	repo := newFakeUserRepo()
	editor := addUser(t, repo, map[string]bool{constants.PrivilegeEdit: true})
	svc := NewAuthService(repo, nil)

	tests := []struct {
		name      string
		userID    string
		privilege string
		want      bool
	}{
		{"granted privilege", editor.ID.Hex(), constants.PrivilegeEdit, true},
		{"missing privilege", editor.ID.Hex(), constants.PrivilegePublish, false},
		{"unknown user", bson.NewObjectID().Hex(), constants.PrivilegeEdit, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Can(context.Background(), tt.userID, tt.privilege)
			if err != nil {
				t.Fatalf("Can: %v", err)
			}
			if got != tt.want {
				t.Errorf("Can = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdminImpliesEveryPrivilege(t *testing.T) {
	repo := newFakeUserRepo()
	admin := addUser(t, repo, map[string]bool{constants.PrivilegeAdmin: true})
	svc := NewAuthService(repo, nil)

	for _, privilege := range []string{constants.PrivilegeEdit, constants.PrivilegePublish, constants.PrivilegeAdmin} {
		got, err := svc.Can(context.Background(), admin.ID.Hex(), privilege)
		if err != nil {
			t.Fatalf("Can(%s): %v", privilege, err)
		}
		if !got {
			t.Errorf("admin lacks %q", privilege)
		}
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	addUser(t, repo, nil)
	svc := NewAuthService(repo, nil)

	_, appErr := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "editor@example.org",
		FullName: "Someone Else",
		Password: "password123",
	})
	if appErr == nil || appErr.Code != errors.ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", appErr)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	addUser(t, repo, nil)
	svc := NewAuthService(repo, nil)

	_, appErr := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "editor@example.org",
		Password: "wrong",
	})
	if appErr == nil || appErr.Code != errors.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", appErr)
	}
}
