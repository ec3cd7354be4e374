package mongodb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClient wraps the MongoDB client
type MongoClient struct {
	client   *mongo.Client
	database *mongo.Database
}

// validateMongoURI performs basic sanity checks on a connection URI
func validateMongoURI(uri string) error {
	if uri == "" {
		return fmt.Errorf("mongodb URI is empty")
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("invalid mongodb URI: %w", err)
	}

	if parsed.Scheme != "mongodb" && parsed.Scheme != "mongodb+srv" {
		return fmt.Errorf("unsupported URI scheme: %q", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("mongodb URI is missing a host")
	}

	return nil
}

// validateDatabaseName rejects names MongoDB does not allow
func validateDatabaseName(name string) error {
	if name == "" {
		return fmt.Errorf("database name is empty")
	}
	if strings.ContainsAny(name, `/\. "$`) {
		return fmt.Errorf("database name %q contains invalid characters", name)
	}
	return nil
}

// NewMongoClient creates a new MongoDB client
func NewMongoClient(uri, database string) (*MongoClient, error) {
	if err := validateMongoURI(uri); err != nil {
		return nil, err
	}
	if err := validateDatabaseName(database); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the database
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return &MongoClient{
		client:   client,
		database: client.Database(database),
	}, nil
}

// Collection returns a collection handle
func (c *MongoClient) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

// CreateIndexes creates the given indexes on a collection
func (c *MongoClient) CreateIndexes(ctx context.Context, collection string, indexes []mongo.IndexModel) error {
	if len(indexes) == 0 {
		return nil
	}
	_, err := c.Collection(collection).Indexes().CreateMany(ctx, indexes)
	return err
}

// Ping verifies the database connection is alive
func (c *MongoClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

// Disconnect closes the MongoDB connection
func (c *MongoClient) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Database returns the database handle
func (c *MongoClient) Database() *mongo.Database {
	return c.database
}
