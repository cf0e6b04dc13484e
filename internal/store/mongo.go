package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/vipauth/internal/models"
)

// UsersCollection is the collection holding user records.
const UsersCollection = "users"

// documentValidationFailure is the server code for a $jsonSchema rejection.
const documentValidationFailure = 121

// MongoStore handles user records in MongoDB.
type MongoStore struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db, col: db.Collection(UsersCollection)}
}

// Migrate creates the users collection with its schema validator and the
// unique index on username. Safe to run on every start.
func (s *MongoStore) Migrate(ctx context.Context) error {
	validator := bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"username", "passwordHash"},
			"properties": bson.M{
				"username":     bson.M{"bsonType": "string", "minLength": 1, "maxLength": models.MaxUsernameLength},
				"passwordHash": bson.M{"bsonType": "string", "minLength": 1},
			},
		},
	}

	names, err := s.db.ListCollectionNames(ctx, bson.M{"name": UsersCollection})
	if err != nil {
		return fmt.Errorf("mongo list collections: %w", err)
	}
	if len(names) == 0 {
		opts := options.CreateCollection().SetValidator(validator)
		if err := s.db.CreateCollection(ctx, UsersCollection, opts); err != nil {
			return fmt.Errorf("mongo create collection: %w", err)
		}
	} else {
		cmd := bson.D{{Key: "collMod", Value: UsersCollection}, {Key: "validator", Value: validator}}
		if err := s.db.RunCommand(ctx, cmd).Err(); err != nil {
			return fmt.Errorf("mongo collMod: %w", err)
		}
	}

	_, err = s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	})
	if err != nil {
		return fmt.Errorf("mongo create index: %w", err)
	}
	return nil
}

func (s *MongoStore) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	u.ID = ""
	u.CreatedAt = time.Now().UTC()

	res, err := s.col.InsertOne(ctx, u)
	if err != nil {
		return nil, mapMongoError(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid.Hex()
	}
	return &u, nil
}

func (s *MongoStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var doc mongoUser
	err := s.col.FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find user: %w", err)
	}
	return doc.toModel(), nil
}

// mongoUser mirrors the stored document; _id is an ObjectID on disk.
type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"passwordHash"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d mongoUser) toModel() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

func mapMongoError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateUsername
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == documentValidationFailure {
				return &models.ValidationError{Fields: map[string]string{"document": e.Message}}
			}
		}
	}
	return fmt.Errorf("mongo insert user: %w", err)
}
