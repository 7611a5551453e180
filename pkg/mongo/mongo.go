package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config holds the document-store connection settings.
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// Client wraps a connected driver client and its database handle.
type Client struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// NewClient connects and pings the primary.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return &Client{Client: client, DB: client.Database(cfg.Database)}, nil
}

// Close disconnects the client.
func (c *Client) Close(ctx context.Context) error {
	return c.Client.Disconnect(ctx)
}
