// Package archive persists measurement outcomes to MongoDB when a deployment
// provides one. Archiving is best effort: a missing URI disables it and a
// write failure never fails the request that produced it.
package archive

import (
	"context"
	"os"
	"time"

	"github.com/edaniels/golog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/multierr"

	"github.com/UmeshNayak1/DimensiMeasure/config"
	"github.com/UmeshNayak1/DimensiMeasure/measure"
)

const connectTimeout = 5 * time.Second

// A Store writes measurement records to one MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	host   string
	logger golog.Logger
}

// record is a measurement outcome in its archived form.
type record struct {
	CreatedAt    time.Time             `bson:"created_at"`
	Host         string                `bson:"host"`
	RequestID    string                `bson:"request_id"`
	Success      bool                  `bson:"success"`
	Message      string                `bson:"message"`
	ObjectCount  int                   `bson:"object_count"`
	Measurements []measure.Measurement `bson:"measurements"`
}

// NewStore connects to the deployment named by the config. When the URI
// environment variable is unset it returns nil, nil and archiving is skipped.
func NewStore(ctx context.Context, cfg *config.ArchiveConfig, logger golog.Logger) (*Store, error) {
	mongoURI, ok := os.LookupEnv(cfg.URIEnv)
	if !ok || mongoURI == "" {
		logger.Warnw("no MongoDB URI found; archiving disabled", "env", cfg.URIEnv)
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	client, err := mongo.NewClient(options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, err
	}
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, multierr.Combine(err, client.Disconnect(ctx))
	}

	host, _ := os.Hostname()
	return &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		host:   host,
		logger: logger,
	}, nil
}

// Archive writes one measurement outcome. A nil store swallows the write so
// callers need not branch on whether archiving is configured.
func (s *Store) Archive(ctx context.Context, requestID string, res measure.Result) error {
	if s == nil {
		return nil
	}
	_, err := s.coll.InsertOne(ctx, record{
		CreatedAt:    time.Now().UTC(),
		Host:         s.host,
		RequestID:    requestID,
		Success:      res.Success,
		Message:      res.Message,
		ObjectCount:  len(res.Measurements),
		Measurements: res.Measurements,
	})
	return err
}

// Close disconnects from the deployment.
func (s *Store) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
