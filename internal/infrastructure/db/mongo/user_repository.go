package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/roomsync/reservation-system/internal/core/domain"
)

const userCollection = "users"

// WriteHook is invoked after each successful mutating persistence call with
// the affected aggregate's id. The repositories stay ignorant of what the
// hook does; in practice it triggers domain event dispatch.
type WriteHook func(ctx context.Context, aggregateID string)

// UserRepository persists users in MongoDB. The collection carries a unique
// index on email.
type UserRepository struct {
	coll      *mongo.Collection
	afterSave WriteHook
}

func NewUserRepository(db *mongo.Database, afterSave WriteHook) *UserRepository {
	if afterSave == nil {
		afterSave = func(context.Context, string) {}
	}
	return &UserRepository{coll: db.Collection(userCollection), afterSave: afterSave}
}

type mongoUser struct {
	ID             string `bson:"_id"`
	Email          string `bson:"email"`
	Name           string `bson:"name"`
	Role           string `bson:"role"`
	EmailConfirmed bool   `bson:"email_confirmed"`
	PasswordHash   string `bson:"password_hash"`
	CreatedAt      int64  `bson:"created_at"`
	UpdatedAt      int64  `bson:"updated_at"`
}

func toMongoUser(u *domain.User) mongoUser {
	return mongoUser{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Role:           u.Role,
		EmailConfirmed: u.EmailConfirmed,
		PasswordHash:   u.PasswordHash,
		CreatedAt:      u.CreatedAt.Unix(),
		UpdatedAt:      u.UpdatedAt.Unix(),
	}
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:             mu.ID,
		Email:          mu.Email,
		Name:           mu.Name,
		Role:           mu.Role,
		EmailConfirmed: mu.EmailConfirmed,
		PasswordHash:   mu.PasswordHash,
		CreatedAt:      unixToTime(mu.CreatedAt),
		UpdatedAt:      unixToTime(mu.UpdatedAt),
	}
}

// Save inserts the user or replaces an existing record by id, then fires the
// post-write hook.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := toMongoUser(user)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("save user: %w", err)
	}

	r.afterSave(ctx, user.ID)
	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users by email: %w", err)
	}
	return n > 0, nil
}

func (r *UserRepository) DeleteOne(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}

	r.afterSave(ctx, id)
	return nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
