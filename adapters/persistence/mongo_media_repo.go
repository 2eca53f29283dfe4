package persistence

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/khoahotran/summit-cms/internal/config"
	"github.com/khoahotran/summit-cms/internal/domain/media"
	"github.com/khoahotran/summit-cms/pkg/apperror"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

func NewMongoDatabase(ctx context.Context, cfg config.Config, log logger.Logger) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("can not connect MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB failed: %w", err)
	}

	log.Info("Connect MongoDB successfully.", zap.String("database", cfg.Mongo.Database))
	return client.Database(cfg.Mongo.Database), nil
}

type mediaDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	RemoteRef   string             `bson:"public_id"`
	URL         string             `bson:"url"`
	OriginalURL string             `bson:"original_url"`
	Order       int                `bson:"order"`
	Width       int                `bson:"width"`
	Height      int                `bson:"height"`
	Metadata    bson.M             `bson:"metadata"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d *mediaDocument) toItem(collection string) *media.Item {
	metadata := plainMetadata(d.Metadata)
	return &media.Item{
		ID:          d.ID.Hex(),
		Collection:  collection,
		RemoteRef:   d.RemoteRef,
		URL:         d.URL,
		OriginalURL: d.OriginalURL,
		Order:       d.Order,
		Width:       d.Width,
		Height:      d.Height,
		Metadata:    metadata,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// plainMetadata turns decoded metadata back into the map/slice shapes the rest of the code and
// encoding/json expect. Nested documents decode as primitive.D and arrays as primitive.A.
func plainMetadata(m bson.M) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = plainValue(e.Value)
		}
		return m
	case primitive.M:
		return plainMetadata(bson.M(t))
	case map[string]any:
		return plainMetadata(bson.M(t))
	case primitive.A:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = plainValue(e)
		}
		return s
	case []any:
		return plainValue(primitive.A(t))
	}
	return v
}

// mongoMediaRepo keeps each media collection in its own Mongo collection, one document per item.
// It has no atomic multi-document order write, so reorders go item by item.
type mongoMediaRepo struct {
	db     *mongo.Database
	logger logger.Logger
}

var _ media.RecordStore = (*mongoMediaRepo)(nil)

func NewMongoMediaRepo(db *mongo.Database, logger logger.Logger) *mongoMediaRepo {
	return &mongoMediaRepo{db: db, logger: logger}
}

func mongoCollectionName(collection string) string {
	return "media_" + collection
}

func (r *mongoMediaRepo) coll(collection string) *mongo.Collection {
	return r.db.Collection(mongoCollectionName(collection))
}

// EnsureIndexes creates the order index for every configured collection.
func (r *mongoMediaRepo) EnsureIndexes(ctx context.Context, collections []string) error {
	for _, c := range collections {
		_, err := r.coll(c).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "order", Value: 1}, {Key: "created_at", Value: 1}},
		})
		if err != nil {
			return fmt.Errorf("create order index for %s: %w", c, err)
		}
	}
	return nil
}

func (r *mongoMediaRepo) Create(ctx context.Context, it *media.Item) (string, error) {
	doc := mediaDocument{
		ID:          primitive.NewObjectID(),
		RemoteRef:   it.RemoteRef,
		URL:         it.URL,
		OriginalURL: it.OriginalURL,
		Order:       it.Order,
		Width:       it.Width,
		Height:      it.Height,
		Metadata:    bson.M(it.Metadata),
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
	if _, err := r.coll(it.Collection).InsertOne(ctx, doc); err != nil {
		return "", apperror.NewInternal("failed to insert media document", err)
	}
	return doc.ID.Hex(), nil
}

func (r *mongoMediaRepo) List(ctx context.Context, collection string) ([]*media.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperror.NewInternal("failed to query media documents", err)
	}
	defer cursor.Close(ctx)

	items := make([]*media.Item, 0)
	for cursor.Next(ctx) {
		var doc mediaDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, apperror.NewInternal("failed to decode media document", err)
		}
		items = append(items, doc.toItem(collection))
	}
	if err := cursor.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating media documents", err)
	}
	return items, nil
}

func (r *mongoMediaRepo) Update(ctx context.Context, collection, id string, patch media.Patch) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperror.NewNotFound("media item", id)
	}
	if patch.IsEmpty() {
		return nil
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Order != nil {
		set["order"] = *patch.Order
	}
	if patch.Metadata != nil {
		set["metadata"] = bson.M(patch.Metadata)
	}

	res, err := r.coll(collection).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return apperror.NewInternal("failed to update media document", err)
	}
	if res.MatchedCount == 0 {
		return apperror.NewNotFound("media item", id)
	}
	return nil
}

func (r *mongoMediaRepo) Delete(ctx context.Context, collection, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperror.NewNotFound("media item", id)
	}
	res, err := r.coll(collection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return apperror.NewInternal("failed to delete media document", err)
	}
	if res.DeletedCount == 0 {
		return apperror.NewNotFound("media item", id)
	}
	return nil
}
