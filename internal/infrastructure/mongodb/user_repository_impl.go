package mongodb

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	"github.com/devtrail/bootcamp-api/internal/domain/repository"
	"github.com/devtrail/bootcamp-api/pkg/query"
)

// excludePassword keeps hash and reset-token material out of default reads,
// mirroring a select:false schema field.
var excludePassword = bson.M{"password": 0, "resetPasswordToken": 0, "resetPasswordExpire": 0}

type UserRepository struct {
	db *mongo.Database
	c  *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{db: db, c: db.Collection(usersColl)}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	u.Email = strings.ToLower(u.Email)
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	if u.Image == "" {
		u.Image = entity.DefaultUserImage
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := r.c.InsertOne(ctx, u)
	if err != nil {
		return mapErr(err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	objID, err := oid(id)
	if err != nil {
		return nil, err
	}
	var u entity.User
	err = r.c.FindOne(ctx, bson.M{"_id": objID}, options.FindOne().SetProjection(excludePassword)).Decode(&u)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	err := r.c.FindOne(ctx, bson.M{"email": strings.ToLower(email)},
		options.FindOne().SetProjection(excludePassword)).Decode(&u)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmailWithPassword(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	err := r.c.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&u)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error) {
	var u entity.User
	err := r.c.FindOne(ctx, bson.M{
		"resetPasswordToken":  tokenHash,
		"resetPasswordExpire": bson.M{"$gt": now},
	}).Decode(&u)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *UserRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) (*entity.User, error) {
	objID, err := oid(id)
	if err != nil {
		return nil, err
	}
	if email, ok := fields["email"].(string); ok {
		fields["email"] = strings.ToLower(email)
	}

	set := bson.M{}
	unset := bson.M{}
	for k, v := range fields {
		if v == nil {
			unset[k] = ""
		} else {
			set[k] = v
		}
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var u entity.User
	err = r.c.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update,
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(excludePassword)).Decode(&u)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	objID, err := oid(id)
	if err != nil {
		return err
	}
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, params query.ListParams) (query.ListResult, error) {
	return findAdvanced(ctx, r.db, usersColl, params, nil)
}
