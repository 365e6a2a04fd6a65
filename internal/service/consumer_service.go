package service

import (
	"context"
	"encoding/json"
	"log"

	"wine-cellar-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the cache-warming topic so enrichment writes
// never block a user-facing dispatch.
type consumerService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	cacheService IEnrichmentCacheService
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	cacheService IEnrichmentCacheService,
) IConsumerService {
	return &consumerService{
		pubSub:       pubSub,
		topicName:    topicName,
		cacheService: cacheService,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.WarmEnrichmentCacheMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal cache warming message: %v", err)
		msg.Ack() // malformed, retrying will not help
		return
	}
	if payload.LookupKey == "" || payload.Result == nil {
		log.Printf("[ERROR] Cache warming message missing lookup key or result")
		msg.Ack()
		return
	}

	if err := cs.cacheService.Warm(ctx, payload.LookupKey, payload.Result); err != nil {
		log.Printf("[ERROR] Failed to warm enrichment cache for %s: %v", payload.LookupKey, err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Warmed enrichment cache for %s", payload.LookupKey)
	msg.Ack()
}
