package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iconidentify/socialscope/internal/config"
	"github.com/iconidentify/socialscope/internal/domain"
)

// MongoStore implements DocumentStore on MongoDB. Pipeline results live in
// one collection keyed by task_id; Instagram post records live in another
// keyed by shortcode with a 7-day freshness window.
type MongoStore struct {
	client   *mongo.Client
	results  *mongo.Collection
	posts    *mongo.Collection
	cacheTTL time.Duration
	now      func() time.Time
}

// NewMongoStore connects to MongoDB and binds the two collections.
func NewMongoStore(ctx context.Context, cfg config.MongoConfig, cacheTTL time.Duration) (*MongoStore, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.Database)
	return &MongoStore{
		client:   client,
		results:  db.Collection(cfg.Collection),
		posts:    db.Collection(cfg.PostsCollection),
		cacheTTL: cacheTTL,
		now:      time.Now,
	}, nil
}

// EnsureIndexes creates the lookup indexes both collections rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.results.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "task_id", Value: 1}}},
		{Keys: bson.D{{Key: "platform", Value: 1}, {Key: "video_info.video_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create result indexes: %w", err)
	}

	_, err = s.posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "shortcode", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "fetched_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create post indexes: %w", err)
	}
	return nil
}

// Ping verifies the MongoDB connection is still alive.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// SaveResult upserts a unified document keyed by task_id.
func (s *MongoStore) SaveResult(ctx context.Context, doc *domain.UnifiedDocument) error {
	filter := bson.M{"task_id": doc.TaskID}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	if _, err := s.results.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("save result %s: %w", doc.TaskID, err)
	}
	return nil
}

// FindByTaskID returns the unified document for a task.
func (s *MongoStore) FindByTaskID(ctx context.Context, taskID domain.TaskID) (*domain.UnifiedDocument, error) {
	var doc domain.UnifiedDocument
	err := s.results.FindOne(ctx, bson.M{"task_id": string(taskID)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find result %s: %w", taskID, err)
	}
	return &doc, nil
}

// FindByContentID returns an earlier result for the same post.
func (s *MongoStore) FindByContentID(ctx context.Context, platform domain.Platform, contentID string) (*domain.UnifiedDocument, error) {
	filter := bson.M{
		"platform":            string(platform),
		"video_info.video_id": contentID,
	}

	var doc domain.UnifiedDocument
	err := s.results.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find result for %s/%s: %w", platform, contentID, err)
	}
	return &doc, nil
}

// GetCachedPost returns a fresh cached post. Expired records are deleted on
// read so the next request re-scrapes.
func (s *MongoStore) GetCachedPost(ctx context.Context, shortcode string) (*domain.CachedPost, error) {
	var post domain.CachedPost
	err := s.posts.FindOne(ctx, bson.M{"shortcode": shortcode}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find cached post %s: %w", shortcode, err)
	}

	if post.Expired(s.now()) {
		if _, err := s.posts.DeleteOne(ctx, bson.M{"shortcode": shortcode}); err != nil {
			return nil, fmt.Errorf("delete expired post %s: %w", shortcode, err)
		}
		return nil, domain.ErrDocumentNotFound
	}
	return &post, nil
}

// SavePost upserts a post keyed by shortcode with refreshed cache stamps and
// returns the stored record's hex identifier.
func (s *MongoStore) SavePost(ctx context.Context, post *domain.CachedPost) (string, error) {
	now := s.now()
	post.FetchedAt = now
	post.CacheExpiry = now.Add(s.cacheTTL)

	filter := bson.M{"shortcode": post.Shortcode}
	update := bson.M{"$set": post}
	opts := options.Update().SetUpsert(true)

	if _, err := s.posts.UpdateOne(ctx, filter, update, opts); err != nil {
		return "", fmt.Errorf("save post %s: %w", post.Shortcode, err)
	}

	var stored struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := s.posts.FindOne(ctx, filter).Decode(&stored); err != nil {
		return "", fmt.Errorf("read back post %s: %w", post.Shortcode, err)
	}
	return stored.ID.Hex(), nil
}
