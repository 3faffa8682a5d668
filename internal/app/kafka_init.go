package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/redirector/internal/messaging/kafka"
)

// initKafkaProducer поднимает producer событий решений, если задан хотя бы
// один брокер. Kafka для сервиса опциональна: при пустом списке брокеров
// или ошибке подключения решения принимаются без публикации событий.
func initKafkaProducer(brokers string, logger *log.Entry) (*kafka.Producer, error) {
	if brokers == "" {
		return nil, nil
	}

	brokerList := strings.Split(brokers, ",")
	producer, err := kafka.NewProducer(brokerList)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, decisions will not be published")
		return nil, err
	}

	logger.WithField("brokers", brokerList).Info("kafka producer for decision events initialized")
	return producer, nil
}

// closeKafka закрывает producer событий, если он был создан.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
