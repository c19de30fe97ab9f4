package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/goran-ethernal/RWAListener/internal/common"
	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	pkglistener "github.com/goran-ethernal/RWAListener/pkg/listener"
)

// Compile-time check to ensure KafkaNotifier implements pkglistener.Notifier interface.
var _ pkglistener.Notifier = (*KafkaNotifier)(nil)

const (
	notifierMaxRetries   = 3
	notifierRetryBackoff = 100 * time.Millisecond
)

// BlockNotification is a type alias for the public BlockNotification type.
type BlockNotification = pkglistener.BlockNotification

// KafkaNotifier publishes a JSON message per committed block, keyed by height.
type KafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger

	mu     sync.RWMutex
	closed bool
}

// NewSaramaConfig returns the producer configuration used by the notifier.
func NewSaramaConfig(cfg *config.NotifierConfig) *sarama.Config {
	sc := sarama.NewConfig()
	sc.Version = sarama.V2_8_0_0
	sc.ClientID = cfg.ClientID
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = notifierMaxRetries
	sc.Producer.Retry.Backoff = notifierRetryBackoff
	return sc
}

// NewKafkaNotifier connects a synchronous producer to the configured brokers.
func NewKafkaNotifier(cfg *config.NotifierConfig, log *logger.Logger) (*KafkaNotifier, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return NewKafkaNotifierWithProducer(producer, cfg.Topic, log), nil
}

// NewKafkaNotifierWithProducer wraps an existing producer.
func NewKafkaNotifierWithProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		producer: producer,
		topic:    topic,
		log:      log.WithComponent(common.ComponentNotifier),
	}
}

// NotifyBlock publishes the block summary.
func (n *KafkaNotifier) NotifyBlock(ctx context.Context, block *BlockNotification) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return fmt.Errorf("notifier is closed")
	}

	value, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("failed to encode block notification: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(block.Height, 10)),
		Value: sarama.ByteEncoder(value),
	}

	partition, offset, err := n.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to publish block %d: %w", block.Height, err)
	}

	n.log.Debugw("block notification published",
		"topic", n.topic,
		"height", block.Height,
		"partition", partition,
		"offset", offset,
	)

	return nil
}

// Close closes the producer. Further notifications fail.
func (n *KafkaNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}

	n.closed = true
	return n.producer.Close()
}
