package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/b2bquote/rfq-service/internal/models"

	"github.com/IBM/sarama"
)

// Dispatcher отправляет доменные события внешнему нотификатору.
// Отправка best-effort: ошибки логируются и никогда не возвращаются ядру.
type Dispatcher interface {
	Dispatch(ctx context.Context, event models.Event)
}

// SaramaDispatcher публикует события в Kafka через синхронный продюсер.
type SaramaDispatcher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *log.Logger
}

// NewSaramaDispatcher создает продюсер для списка брокеров.
func NewSaramaDispatcher(brokers []string, topic string, logger *log.Logger) (*SaramaDispatcher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second
	prod, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}
	return &SaramaDispatcher{producer: prod, topic: topic, logger: logger}, nil
}

// Dispatch публикует событие. Сбой доставки не прерывает операцию ядра.
func (d *SaramaDispatcher) Dispatch(_ context.Context, event models.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		d.logger.Printf("failed to marshal event %s: %v", event.Type, err)
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: d.topic,
		Key:   sarama.StringEncoder(event.EntityID),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := d.producer.SendMessage(msg); err != nil {
		d.logger.Printf("failed to dispatch event %s for %s: %v", event.Type, event.EntityID, err)
	}
}

// Close закрывает продюсер.
func (d *SaramaDispatcher) Close() error {
	return d.producer.Close()
}

// LogDispatcher пишет события в лог. Используется, когда брокер не настроен.
type LogDispatcher struct {
	Logger *log.Logger
}

func (d *LogDispatcher) Dispatch(_ context.Context, event models.Event) {
	d.Logger.Printf("event %s entity=%s actor=%s", event.Type, event.EntityID, event.ActorID)
}
