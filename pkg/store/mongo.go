package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps closure records in a MongoDB collection, one document
// per segment with the encoded record as a binary field. Each build gets
// its own collection, named after its namespace.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type closureDoc struct {
	ID     int64  `bson:"_id"`
	Record []byte `bson:"record"`
}

// NewMongoStore connects to MongoDB and binds the store to the collection
// for the given namespace. The connection is verified with a ping.
func NewMongoStore(ctx context.Context, uri, database, namespace string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection("closures_" + namespace),
	}, nil
}

// Put encodes and upserts one closure.
func (s *MongoStore) Put(ctx context.Context, id int64, ancestors []int64) error {
	record, err := Encode(ancestors)
	if err != nil {
		return err
	}
	_, err = s.coll.ReplaceOne(ctx,
		bson.M{"_id": id},
		closureDoc{ID: id, Record: record},
		options.Replace().SetUpsert(true),
	)
	return err
}

// Get fetches and decodes the closure of one segment.
func (s *MongoStore) Get(ctx context.Context, id int64) ([]int64, error) {
	var doc closureDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return Decode(doc.Record)
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var (
	_ Writer = (*MongoStore)(nil)
	_ Reader = (*MongoStore)(nil)
)
