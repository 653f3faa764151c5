package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/twiese99/EmojiApp/internal/models"
)

// MongoStore handles user and phrase CRUD in MongoDB.
type MongoStore struct {
	client  *mongo.Client
	users   *mongo.Collection
	phrases *mongo.Collection
}

func NewMongoStore(client *mongo.Client, db string) *MongoStore {
	d := client.Database(db)
	return &MongoStore{
		client:  client,
		users:   d.Collection("users"),
		phrases: d.Collection("phrases"),
	}
}

// EnsureIndexes creates the unique email index and the phrase listing index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo users index: %w", err)
	}
	_, err = s.phrases.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongo phrases index: %w", err)
	}
	return nil
}

func (s *MongoStore) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.client.Disconnect(ctx)
}

func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) error {
	u.CreatedAt = time.Now().UTC()
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user %q: %w", u.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("mongo insert user: %w", err)
	}
	return nil
}

func (s *MongoStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *MongoStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find user: %w", err)
	}
	return &u, nil
}

func (s *MongoStore) Phrases(ctx context.Context, userID string) ([]models.Phrase, error) {
	return s.findPhrases(ctx, bson.M{"user_id": userID}, options.Find())
}

func (s *MongoStore) RecentPhrases(ctx context.Context, limit int) ([]models.Phrase, error) {
	return s.findPhrases(ctx, bson.M{}, options.Find().SetLimit(int64(limit)))
}

func (s *MongoStore) findPhrases(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Phrase, error) {
	opts.SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.phrases.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find phrases: %w", err)
	}
	defer cur.Close(ctx)

	var phrases []models.Phrase
	if err := cur.All(ctx, &phrases); err != nil {
		return nil, fmt.Errorf("mongo decode phrases: %w", err)
	}
	return phrases, nil
}

func (s *MongoStore) Phrase(ctx context.Context, id string) (*models.Phrase, error) {
	var p models.Phrase
	err := s.phrases.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find phrase: %w", err)
	}
	return &p, nil
}

func (s *MongoStore) AddPhrase(ctx context.Context, userID, emoji, text string) (*models.Phrase, error) {
	p := &models.Phrase{
		ID:        uuid.NewString(),
		UserID:    userID,
		Emoji:     emoji,
		Phrase:    text,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.phrases.InsertOne(ctx, p); err != nil {
		return nil, fmt.Errorf("mongo insert phrase: %w", err)
	}
	return p, nil
}

func (s *MongoStore) RemovePhrase(ctx context.Context, userID, id string) error {
	res, err := s.phrases.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("mongo delete phrase: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
