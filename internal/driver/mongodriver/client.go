// Package mongodriver adapts the official MongoDB driver to driver.DocumentStore.
package mongodriver

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/peternagy/dbquerytool/internal/bsonutil"
	"github.com/peternagy/dbquerytool/internal/core"
	"github.com/peternagy/dbquerytool/internal/debug"
	"github.com/peternagy/dbquerytool/internal/driver"
	"github.com/peternagy/dbquerytool/internal/types"
)

// Client is a connected MongoDB handle.
type Client struct {
	client *mongo.Client
}

var _ driver.DocumentStore = (*Client)(nil)

// ClientOptions builds driver options for a profile.
func ClientOptions(p types.ConnectionProfile, timeouts core.Timeouts) *options.ClientOptions {
	timeouts = timeouts.WithDefaults()
	host := p.Host
	if host == "" {
		host = "localhost"
	}
	port := p.Port
	if port == 0 {
		port = 27017
	}
	opts := options.Client().
		SetHosts([]string{host + ":" + strconv.Itoa(port)}).
		SetConnectTimeout(timeouts.Connect).
		SetServerSelectionTimeout(timeouts.Connect).
		SetTimeout(timeouts.Query)
	if p.Username != "" {
		opts.SetAuth(options.Credential{Username: p.Username, Password: p.Password})
	}
	return opts
}

// Dial connects to the profile's server and verifies it with a ping.
func Dial(ctx context.Context, p types.ConnectionProfile, timeouts core.Timeouts) (*Client, error) {
	ctx, cancel := timeouts.ConnectContext(ctx)
	defer cancel()

	client, err := mongo.Connect(ctx, ClientOptions(p, timeouts))
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	debug.LogConnection("mongo connected", map[string]interface{}{"address": p.Address()})
	return &Client{client: client}, nil
}

// Wrap adapts an existing driver client.
func Wrap(client *mongo.Client) *Client {
	return &Client{client: client}
}

// Ping checks the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

// ListDatabases returns database names sorted by name.
func (c *Client) ListDatabases(ctx context.Context) ([]string, error) {
	names, err := c.client.ListDatabaseNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// ListCollections returns collection names in db sorted by name.
func (c *Client) ListCollections(ctx context.Context, db string) ([]string, error) {
	names, err := c.client.Database(db).ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Close disconnects the client.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]types.Object, error) {
	defer cursor.Close(ctx)

	records := []types.Object{}
	for cursor.Next(ctx) {
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		records = append(records, bsonutil.DocToObject(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
