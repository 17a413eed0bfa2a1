package checkers

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// MongoPinger is satisfied by *mongo.Client.
type MongoPinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

type MongoChecker struct {
	client MongoPinger
}

func NewMongoChecker(client MongoPinger) *MongoChecker {
	return &MongoChecker{client: client}
}

func (c *MongoChecker) Name() string { return "mongo" }

func (c *MongoChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return c.client.Ping(ctx, readpref.Primary())
}
