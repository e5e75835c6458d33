package repository

import (
	"context"
	"fmt"

	"CandleVault/internal/domain/models"
	pkgkafka "CandleVault/pkg/kafka"
	applogger "CandleVault/pkg/logger"
)

// KafkaRunNotifier implements RunNotifier by publishing the per-run report
// to a Kafka topic. Keyed by the run timestamp so replays stay ordered.
type KafkaRunNotifier struct {
	producer *pkgkafka.Producer
	topic    string
	logger   *applogger.Logger
}

// NewKafkaRunNotifier creates a run notifier.
func NewKafkaRunNotifier(producer *pkgkafka.Producer, topic string, log *applogger.Logger) *KafkaRunNotifier {
	if log == nil {
		log = applogger.Nop()
	}
	return &KafkaRunNotifier{producer: producer, topic: topic, logger: log}
}

// NotifyRun publishes the run report.
func (n *KafkaRunNotifier) NotifyRun(ctx context.Context, report *models.FetchReport) error {
	key := []byte(report.Timestamp.UTC().Format("20060102T150405Z"))
	if err := n.producer.Publish(ctx, n.topic, key, report); err != nil {
		return fmt.Errorf("publish run report: %w", err)
	}

	n.logger.Info("run report published",
		applogger.String("topic", n.topic),
		applogger.Float64("success_rate", report.SuccessRatePercent),
	)
	return nil
}
