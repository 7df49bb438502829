// Package mongo stores manifests and canvases in MongoDB.
//
// Manifests go to the "manifest" collection as {_id, manifest_id, data} and
// canvases to the "canvas" collection as {_id, canvas_id, data}, where _id
// and the *_id field both hold the identity URI and data holds the JSON
// document.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/matzehuels/imagehub/pkg/store"
)

// Collection names.
const (
	ManifestCollection = "manifest"
	CanvasCollection   = "canvas"
)

// DefaultDatabase is used when the connection URI names none.
const DefaultDatabase = "imagehub"

const connectTimeout = 10 * time.Second

type document struct {
	ID         string `bson:"_id"`
	ManifestID string `bson:"manifest_id,omitempty"`
	CanvasID   string `bson:"canvas_id,omitempty"`
	Data       string `bson:"data"`
}

// Store writes to one database.
type Store struct {
	client    *mongo.Client
	manifests *mongo.Collection
	canvases  *mongo.Collection
}

// Connect opens a client for uri and pings the server. An empty database
// selects [DefaultDatabase].
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetWriteConcern(writeconcern.Majority()).
		SetConnectTimeout(connectTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	if database == "" {
		database = DefaultDatabase
	}
	return NewStore(client, database), nil
}

// NewStore wraps an existing client.
func NewStore(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client:    client,
		manifests: db.Collection(ManifestCollection),
		canvases:  db.Collection(CanvasCollection),
	}
}

func (s *Store) Clear(ctx context.Context) error {
	for _, c := range []*mongo.Collection{s.manifests, s.canvases} {
		if _, err := c.DeleteMany(ctx, bson.D{}); err != nil {
			return fmt.Errorf("clear %s: %w", c.Name(), err)
		}
	}
	return nil
}

func (s *Store) PutCanvas(ctx context.Context, doc store.Document) error {
	return upsert(ctx, s.canvases, document{ID: doc.ID, CanvasID: doc.ID, Data: string(doc.Data)})
}

func (s *Store) PutManifest(ctx context.Context, doc store.Document) error {
	return upsert(ctx, s.manifests, document{ID: doc.ID, ManifestID: doc.ID, Data: string(doc.Data)})
}

func upsert(ctx context.Context, c *mongo.Collection, doc document) error {
	_, err := c.ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.ID}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("write %s %s: %w", c.Name(), doc.ID, err)
	}
	return nil
}

// Flush is a no-op: every write is acknowledged with majority write concern
// before Put returns.
func (s *Store) Flush(ctx context.Context) error { return nil }

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// List returns the documents of kind ordered by ID.
func (s *Store) List(ctx context.Context, kind store.Kind) ([]store.Document, error) {
	c := s.canvases
	if kind == store.KindManifest {
		c = s.manifests
	}
	cur, err := c.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.Name(), err)
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list %s: %w", c.Name(), err)
	}
	out := make([]store.Document, len(docs))
	for i, d := range docs {
		out[i] = store.Document{ID: d.ID, Data: []byte(d.Data)}
	}
	return out, nil
}

var (
	_ store.Store  = (*Store)(nil)
	_ store.Lister = (*Store)(nil)
)
