package mongo

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/authkit/user-service/internal/core/domain"
)

func newTestUser() *domain.User {
	return &domain.User{
		Email:        "a@x.com",
		PasswordHash: "$2a$10$hash",
		FullName:     "A",
		IsActive:     true,
		Roles:        []domain.Role{domain.RoleUser},
	}
}

func userDoc(id primitive.ObjectID, active bool, roles ...string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "email", Value: "a@x.com"},
		{Key: "password", Value: "$2a$10$hash"},
		{Key: "fullName", Value: "A"},
		{Key: "isActive", Value: active},
		{Key: "roles", Value: roles},
	}
}

func TestUserRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigns id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewUserRepository(mt.DB)

		created, err := repo.Create(context.Background(), newTestUser())
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := primitive.ObjectIDFromHex(created.ID); err != nil {
			t.Fatalf("expected ObjectID hex id, got %q", created.ID)
		}
		if created.Email != "a@x.com" || created.FullName != "A" || !created.IsActive {
			t.Fatalf("unexpected user: %+v", created)
		}
		if len(created.Roles) != 1 || created.Roles[0] != domain.RoleUser {
			t.Fatalf("unexpected roles: %v", created.Roles)
		}
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: test.users index: email_unique",
		}))
		repo := NewUserRepository(mt.DB)

		_, err := repo.Create(context.Background(), newTestUser())
		if !errors.Is(err, domain.ErrDuplicateEmail) {
			t.Fatalf("expected ErrDuplicateEmail, got %v", err)
		}
	})

	mt.Run("storage failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "boom",
		}))
		repo := NewUserRepository(mt.DB)

		_, err := repo.Create(context.Background(), newTestUser())
		if err == nil {
			t.Fatal("expected error")
		}
		if errors.Is(err, domain.ErrDuplicateEmail) {
			t.Fatalf("generic failure must not map to ErrDuplicateEmail")
		}
	})
}

func TestUserRepository_FindByEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		ns := mt.DB.Name() + "." + usersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, userDoc(id, true, "user", "admin")))
		repo := NewUserRepository(mt.DB)

		u, err := repo.FindByEmail(context.Background(), "a@x.com")
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if u.ID != id.Hex() || u.PasswordHash != "$2a$10$hash" {
			t.Fatalf("unexpected user: %+v", u)
		}
		if !u.HasAnyRole(domain.RoleAdmin) {
			t.Fatalf("expected admin role, got %v", u.Roles)
		}
	})

	mt.Run("not found", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + usersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := NewUserRepository(mt.DB)

		if _, err := repo.FindByEmail(context.Background(), "ghost@x.com"); !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestUserRepository_FindByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		ns := mt.DB.Name() + "." + usersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, userDoc(id, false, "user")))
		repo := NewUserRepository(mt.DB)

		u, err := repo.FindByID(context.Background(), id.Hex())
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if u.ID != id.Hex() || u.IsActive {
			t.Fatalf("unexpected user: %+v", u)
		}
	})

	mt.Run("invalid id", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)

		if _, err := repo.FindByID(context.Background(), "not-an-object-id"); !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}
