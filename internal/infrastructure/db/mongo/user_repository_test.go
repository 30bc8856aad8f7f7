package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/99minutos/invoice-system/internal/core/domain"
)

const usersNS = "invoice_system.users"

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create maps duplicate key", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error",
		}))

		_, err := repo.Create(context.Background(), &domain.User{Username: "John", Email: "john@example.com", Role: domain.RoleUser})
		if !errors.Is(err, domain.ErrUserExists) {
			mt.Fatalf("expected ErrUserExists, got %v", err)
		}
	})

	mt.Run("create returns id", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u, err := repo.Create(context.Background(), &domain.User{Username: "John", Email: "john@example.com", Role: domain.RoleUser})
		if err != nil {
			mt.Fatalf("create: %v", err)
		}
		if !primitive.IsValidObjectID(u.ID) || u.Username != "John" {
			mt.Fatalf("unexpected user: %+v", u)
		}
	})

	mt.Run("find by username decodes", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "username", Value: "John"},
			{Key: "username_key", Value: "john"},
			{Key: "email", Value: "john@example.com"},
			{Key: "password_hash", Value: "hash"},
			{Key: "role", Value: "User"},
		}))

		u, err := repo.FindByUsername(context.Background(), "JOHN")
		if err != nil {
			mt.Fatalf("find: %v", err)
		}
		if u.ID != oid.Hex() || u.Role != domain.RoleUser || u.RefreshTokenHash != "" {
			mt.Fatalf("unexpected user: %+v", u)
		}
	})

	mt.Run("find missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		if _, err := repo.FindByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	mt.Run("rotate lost race", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.RotateRefreshToken(context.Background(), primitive.NewObjectID().Hex(), "old", "new", time.Now().Add(time.Hour))
		if !errors.Is(err, domain.ErrInvalidToken) {
			mt.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	mt.Run("rotate matched", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		err := repo.RotateRefreshToken(context.Background(), primitive.NewObjectID().Hex(), "old", "new", time.Now().Add(time.Hour))
		if err != nil {
			mt.Fatalf("rotate: %v", err)
		}
	})

	mt.Run("clear reports holder", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		cleared, err := repo.ClearRefreshToken(context.Background(), "hash")
		if err != nil || !cleared {
			mt.Fatalf("expected cleared, got %v, %v", cleared, err)
		}
	})

	mt.Run("clear empty hash is a no-op", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)

		cleared, err := repo.ClearRefreshToken(context.Background(), "")
		if err != nil || cleared {
			mt.Fatalf("expected no-op, got %v, %v", cleared, err)
		}
	})
}
