package store

import (
	"context"
	stderrors "errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/depmerge/pkg/errors"
	"github.com/matzehuels/depmerge/pkg/resolved"
)

// CollectionGraphs is the MongoDB collection holding records.
const CollectionGraphs = "graphs"

// MongoStore keeps every saved record in a MongoDB collection. Latest
// returns the newest by creation time.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri, pings the server and ensures the
// (project, created_at) index exists.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongodb")
	}

	s := &MongoStore{client: client, coll: client.Database(database).Collection(CollectionGraphs)}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// NewMongoStoreFromCollection wraps an existing collection. Close does not
// disconnect the collection's client.
func NewMongoStoreFromCollection(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// EnsureIndexes creates the index used by Latest.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "project", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create index")
	}
	return nil
}

// Save inserts a new record.
func (s *MongoStore) Save(ctx context.Context, project string, g *resolved.Graph) (*Record, error) {
	rec, err := newRecord(project, g)
	if err != nil {
		return nil, err
	}
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "insert record for %s", project)
	}
	return rec, nil
}

// Latest finds the newest record of project.
func (s *MongoStore) Latest(ctx context.Context, project string) (*Record, error) {
	if err := errors.ValidateProjectKey(project); err != nil {
		return nil, err
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"project": project}, opts).Decode(&rec)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(project)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "find record for %s", project)
	}
	return &rec, nil
}

// Close disconnects the client owned by the store.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
