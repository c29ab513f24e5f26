package kafka

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsOnce sync.Once
	registerer  prometheus.Registerer = prometheus.DefaultRegisterer

	producerMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "yielddesk_kafka_producer_messages_total", Help: "Messages published to Kafka"},
		[]string{"topic", "result"},
	)
	producerBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "yielddesk_kafka_producer_bytes_total", Help: "Payload bytes published"},
		[]string{"topic"},
	)
	producerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "yielddesk_kafka_producer_publish_seconds", Help: "Publish latency", Buckets: prometheus.DefBuckets},
		[]string{"topic"},
	)
	consumerQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "yielddesk_kafka_consumer_queue_depth", Help: "Messages waiting for a worker"},
		[]string{"topic"},
	)
	consumerHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "yielddesk_kafka_consumer_messages_total", Help: "Messages handled by result"},
		[]string{"topic", "result"},
	)
	consumerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "yielddesk_kafka_consumer_handle_seconds", Help: "Handling time per message", Buckets: prometheus.DefBuckets},
		[]string{"topic"},
	)
)

// SetMetricsRegisterer must be called before the first producer or consumer
// is created to take effect.
func SetMetricsRegisterer(reg prometheus.Registerer) { registerer = reg }

func registerMetrics() {
	metricsOnce.Do(func() {
		registerer.MustRegister(
			producerMessages, producerBytes, producerLatency,
			consumerQueueDepth, consumerHandled, consumerLatency,
		)
	})
}

func observePublish(topic string, bytes, count int, dur time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	producerMessages.WithLabelValues(topic, result).Add(float64(count))
	producerBytes.WithLabelValues(topic).Add(float64(bytes))
	producerLatency.WithLabelValues(topic).Observe(dur.Seconds())
}
