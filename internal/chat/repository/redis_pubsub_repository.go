package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"food_order_chat_service/internal/chat/domain"
	"food_order_chat_service/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// Push channel naming. One private channel per identity, one shared
// broadcast channel for staff-visible events, two shared error channels.
const (
	// StaffBroadcastChannel shared channel every connected staff listens on
	StaffBroadcastChannel = "chat:staff:broadcast"
	// CustomerErrorChannel shared customer-facing error channel
	CustomerErrorChannel = "chat:errors:customer"
	// StaffErrorChannel shared staff-facing error channel
	StaffErrorChannel = "chat:errors:staff"
)

// CustomerChannel private channel of one customer
func CustomerChannel(customerID string) string {
	return "chat:customer:" + customerID
}

// StaffChannel private channel of one staff member
func StaffChannel(staffID string) string {
	return "chat:staff:" + staffID
}

// PubSub definition push transport for outbound chat events
type PubSub interface {
	Publish(channel string, resp domain.WSResponse) error
	Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error
}

// RedisPubSub definition redis pub/sub
type RedisPubSub struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{
		client: client,
		ctx:    context.Background(),
	}
}

// Publish serialize resp and publish it on channel
func (r *RedisPubSub) Publish(channel string, resp domain.WSResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return r.client.Publish(r.ctx, channel, data).Err()
}

// Subscribe listen on channel and hand every event to handler until ctx is
// cancelled
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error {
	sub := r.client.Subscribe(r.ctx, channel)
	go func() {
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				var resp domain.WSResponse
				if err := json.Unmarshal([]byte(m.Payload), &resp); err != nil {
					logger.Log.Errorf("pubsub unmarshal error:", err)
					continue
				}
				handler(resp)
			case <-ctx.Done():
				logger.Log.Info(fmt.Sprintf("%s , sub close", channel))
				sub.Close()
				return
			}
		}
	}()
	return nil
}
