package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/khoahotran/summit-cms/internal/domain/orphan"
	"github.com/khoahotran/summit-cms/pkg/apperror"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

type orphanDocument struct {
	ID         string     `bson:"_id"`
	Collection string     `bson:"collection"`
	RemoteRef  string     `bson:"remote_ref"`
	URL        string     `bson:"url"`
	Reason     string     `bson:"reason"`
	DetectedAt time.Time  `bson:"detected_at"`
	ResolvedAt *time.Time `bson:"resolved_at"`
}

func (d *orphanDocument) toAsset() *orphan.Asset {
	return &orphan.Asset{
		ID:         d.ID,
		Collection: d.Collection,
		RemoteRef:  d.RemoteRef,
		URL:        d.URL,
		Reason:     d.Reason,
		DetectedAt: d.DetectedAt,
		ResolvedAt: d.ResolvedAt,
	}
}

type mongoOrphanRepo struct {
	coll   *mongo.Collection
	logger logger.Logger
}

var _ orphan.Repository = (*mongoOrphanRepo)(nil)

func NewMongoOrphanRepo(db *mongo.Database, logger logger.Logger) *mongoOrphanRepo {
	return &mongoOrphanRepo{coll: db.Collection("orphaned_assets"), logger: logger}
}

func (r *mongoOrphanRepo) Record(ctx context.Context, a *orphan.Asset) error {
	var existing orphanDocument
	err := r.coll.FindOne(ctx, bson.M{"remote_ref": a.RemoteRef, "resolved_at": nil}).Decode(&existing)
	if err == nil {
		a.ID = existing.ID
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return apperror.NewInternal("failed to look up orphaned asset", err)
	}

	if a.DetectedAt.IsZero() {
		a.DetectedAt = time.Now().UTC()
	}
	doc := orphanDocument{
		ID:         uuid.NewString(),
		Collection: a.Collection,
		RemoteRef:  a.RemoteRef,
		URL:        a.URL,
		Reason:     a.Reason,
		DetectedAt: a.DetectedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return apperror.NewInternal("failed to record orphaned asset", err)
	}
	a.ID = doc.ID
	return nil
}

func (r *mongoOrphanRepo) FindByID(ctx context.Context, id string) (*orphan.Asset, error) {
	var doc orphanDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NewNotFound("orphaned asset", id)
		}
		return nil, apperror.NewInternal("failed to read orphaned asset", err)
	}
	return doc.toAsset(), nil
}

func (r *mongoOrphanRepo) ListUnresolved(ctx context.Context) ([]*orphan.Asset, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"resolved_at": nil}, options.Find().SetSort(bson.D{{Key: "detected_at", Value: 1}}))
	if err != nil {
		return nil, apperror.NewInternal("failed to query orphaned assets", err)
	}
	defer cursor.Close(ctx)

	out := make([]*orphan.Asset, 0)
	for cursor.Next(ctx) {
		var doc orphanDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, apperror.NewInternal("failed to decode orphaned asset", err)
		}
		out = append(out, doc.toAsset())
	}
	if err := cursor.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating orphaned assets", err)
	}
	return out, nil
}

func (r *mongoOrphanRepo) MarkResolved(ctx context.Context, id string, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"resolved_at": at}})
	if err != nil {
		return apperror.NewInternal("failed to resolve orphaned asset", err)
	}
	if res.MatchedCount == 0 {
		return apperror.NewNotFound("orphaned asset", id)
	}
	return nil
}
