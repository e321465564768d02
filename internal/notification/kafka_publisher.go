package notification

import (
	"encoding/json"

	"social-service/internal/models"

	"github.com/IBM/sarama"
)

// EventPublisher fans notification events out to downstream consumers
// (mail dispatch, analytics). A nil publisher disables the fan-out.
type EventPublisher interface {
	Publish(event *models.NotificationEvent) error
	Close() error
}

type kafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(brokers []string, topic string) (EventPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Version = sarama.V2_0_0_0
	config.ClientID = "social-service"
	config.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return &kafkaPublisher{producer: producer, topic: topic}, nil
}

// Publish keys the record by recipient so one user's events stay ordered
// within a partition.
func (p *kafkaPublisher) Publish(event *models.NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.RecipientID),
		Value: sarama.ByteEncoder(payload),
	})
	return err
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}
