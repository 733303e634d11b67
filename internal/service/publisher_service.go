package service

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IPublisherService enqueues ingestion jobs for the in-process consumer.
type IPublisherService interface {
	Publish(ctx context.Context, payload []byte) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (p *publisherService) Publish(ctx context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return p.pubSub.Publish(p.topicName, msg)
}
