package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// PublishToStream appends a message to a Redis Stream via XADD and returns
// the assigned entry id.
func PublishToStream(ctx context.Context, client *redis.Client, stream string, values map[string]interface{}) (string, error) {
	return client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()
}

// PublishJSONToStream serializes data as JSON and appends it to a stream
// under the "data" field, alongside an event name and unix timestamp.
func PublishJSONToStream(ctx context.Context, client *redis.Client, stream, event string, data interface{}) (string, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return PublishToStream(ctx, client, stream, map[string]interface{}{
		"event":     event,
		"data":      string(jsonBytes),
		"timestamp": time.Now().Unix(),
	})
}
