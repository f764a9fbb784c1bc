package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/oksasatya/clubhub/internal/domain/apperror"
	"github.com/oksasatya/clubhub/internal/domain/entity"
	"github.com/oksasatya/clubhub/internal/domain/repository"
)

type userDoc struct {
	ID           string     `bson:"_id"`
	Username     string     `bson:"username"`
	Email        string     `bson:"email"`
	PasswordHash string     `bson:"password_hash,omitempty"`
	FirstName    string     `bson:"first_name"`
	LastName     string     `bson:"last_name"`
	Role         string     `bson:"role"`
	Department   string     `bson:"department,omitempty"`
	StudentID    string     `bson:"student_id,omitempty"`
	Year         string     `bson:"year,omitempty"`
	IsActive     bool       `bson:"is_active"`
	LastLogin    *time.Time `bson:"last_login,omitempty"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
}

func toDoc(u *entity.User) userDoc {
	return userDoc{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         string(u.Role),
		Department:   u.Department,
		StudentID:    u.StudentID,
		Year:         u.Year,
		IsActive:     u.IsActive,
		LastLogin:    u.LastLogin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d *userDoc) toEntity() *entity.User {
	return &entity.User{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Role:         entity.Role(d.Role),
		Department:   d.Department,
		StudentID:    d.StudentID,
		Year:         d.Year,
		IsActive:     d.IsActive,
		LastLogin:    d.LastLogin,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// wrapError maps driver errors onto the domain taxonomy.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperror.ErrUserNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return apperror.ErrUserExists
	}
	return err
}

// hideDigest is the default projection for every read.
var hideDigest = bson.D{{Key: "password_hash", Value: 0}}

type UserRepository struct {
	db  *mongo.Database
	col *mongo.Collection
	now func() time.Time
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{db: db, col: db.Collection(ColUsers), now: time.Now}
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.D, withDigest bool) (*entity.User, error) {
	opts := options.FindOne()
	if !withDigest {
		opts.SetProjection(hideDigest)
	}
	var doc userDoc
	if err := r.col.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		return nil, wrapError(err)
	}
	return doc.toEntity(), nil
}

// Create relies on the unique indexes for race-free uniqueness.
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := r.now().UTC().Truncate(time.Millisecond)
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, toDoc(u))
	return wrapError(err)
}

func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*entity.User, error) {
	return r.findOne(ctx, bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "email", Value: email}},
		bson.D{{Key: "username", Value: username}},
	}}}, false)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string, withDigest bool) (*entity.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}}, withDigest)
}

func (r *UserRepository) GetByID(ctx context.Context, id string, withDigest bool) (*entity.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}}, withDigest)
}

// setAndReturn applies $set atomically and returns the updated document.
func (r *UserRepository) setAndReturn(ctx context.Context, id string, set bson.D) (*entity.User, error) {
	set = append(set, bson.E{Key: "updated_at", Value: r.now().UTC()})
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(hideDigest)
	var doc userDoc
	err := r.col.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		return nil, wrapError(err)
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, patch entity.ProfilePatch) (*entity.User, error) {
	set := bson.D{}
	if patch.FirstName != nil {
		set = append(set, bson.E{Key: "first_name", Value: *patch.FirstName})
	}
	if patch.LastName != nil {
		set = append(set, bson.E{Key: "last_name", Value: *patch.LastName})
	}
	if patch.Department != nil {
		set = append(set, bson.E{Key: "department", Value: *patch.Department})
	}
	if patch.Year != nil {
		set = append(set, bson.E{Key: "year", Value: *patch.Year})
	}
	return r.setAndReturn(ctx, id, set)
}

func (r *UserRepository) updateFields(ctx context.Context, id string, set bson.D) error {
	set = append(set, bson.E{Key: "updated_at", Value: r.now().UTC()})
	res, err := r.col.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return apperror.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateFields(ctx, id, bson.D{{Key: "password_hash", Value: passwordHash}})
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.updateFields(ctx, id, bson.D{{Key: "last_login", Value: at.UTC()}})
}

func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) (*entity.User, error) {
	return r.setAndReturn(ctx, id, bson.D{{Key: "is_active", Value: active}})
}

func (r *UserRepository) SetRole(ctx context.Context, id string, role entity.Role) error {
	return r.updateFields(ctx, id, bson.D{{Key: "role", Value: string(role)}})
}

func (r *UserRepository) Ping(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.db.Client().Ping(c, nil)
}

var (
	_ repository.UserRepository = (*UserRepository)(nil)
	_ repository.RoleAssigner   = (*UserRepository)(nil)
)
