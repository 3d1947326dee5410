// Package mongodb is the primary report store: one immutable document per
// completed scan, keyed by scan_id.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/DHARANIVIP/Deepfake-Detection/internal/domain/entity"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/domain/port"
)

func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}

type Store struct {
	coll *mongo.Collection
}

func NewStore(client *mongo.Client, database, collection string) *Store {
	return &Store{coll: client.Database(database).Collection(collection)}
}

func (s *Store) Insert(ctx context.Context, report *entity.Report) error {
	if _, err := s.coll.InsertOne(ctx, report); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, scanID string) (*entity.Report, error) {
	var report entity.Report
	err := s.coll.FindOne(ctx, bson.M{"scan_id": scanID}).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, port.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find report by id: %w", err)
	}
	return &report, nil
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]entity.Report, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list recent reports: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []entity.Report
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("decode recent reports: %w", err)
	}
	return reports, nil
}

func (s *Store) Delete(ctx context.Context, scanID string) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"scan_id": scanID})
	if err != nil {
		return false, fmt.Errorf("delete report: %w", err)
	}
	return res.DeletedCount > 0, nil
}
