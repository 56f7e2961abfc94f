// Package observability emits operational metrics to CloudWatch.
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

const (
	// flushThreshold is the buffered datum count that triggers a flush.
	// CloudWatch accepts at most 1000 datums per PutMetricData call.
	flushThreshold = 20

	flushInterval = time.Minute
)

// Metrics buffers store-operation metrics and flushes them to CloudWatch in
// the background. It implements kvstore.Observer. A nil client disables
// emission, so development runs need no AWS credentials.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
	logger    *zap.Logger

	mu     sync.Mutex
	buffer []types.MetricDatum

	done chan struct{}
	once sync.Once
}

// NewMetrics creates a metrics emitter and starts its flush loop.
func NewMetrics(namespace string, client *cloudwatch.Client, logger *zap.Logger) *Metrics {
	m := &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
		done:      make(chan struct{}),
	}
	if client != nil {
		go m.flushLoop()
	}
	return m
}

// ObserveStoreOperation records one store call's latency and outcome.
func (m *Metrics) ObserveStoreOperation(op string, duration time.Duration, err error) {
	if m.client == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	dimensions := []types.Dimension{
		{Name: aws.String("Operation"), Value: aws.String(op)},
		{Name: aws.String("Status"), Value: aws.String(status)},
	}
	now := time.Now()

	m.mu.Lock()
	m.buffer = append(m.buffer,
		types.MetricDatum{
			MetricName: aws.String("StoreOperationDuration"),
			Dimensions: dimensions,
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       types.StandardUnitMilliseconds,
			Timestamp:  aws.Time(now),
		},
		types.MetricDatum{
			MetricName: aws.String("StoreOperationCount"),
			Dimensions: dimensions,
			Value:      aws.Float64(1),
			Unit:       types.StandardUnitCount,
			Timestamp:  aws.Time(now),
		},
	)
	shouldFlush := len(m.buffer) >= flushThreshold
	m.mu.Unlock()

	if shouldFlush {
		m.flush()
	}
}

// Close flushes any buffered datums and stops the flush loop.
func (m *Metrics) Close() {
	m.once.Do(func() { close(m.done) })
	m.flush()
}

func (m *Metrics) flushLoop() {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.flush()
		case <-m.done:
			return
		}
	}
}

func (m *Metrics) flush() {
	m.mu.Lock()
	batch := m.buffer
	m.buffer = nil
	m.mu.Unlock()

	if len(batch) == 0 || m.client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: batch,
	})
	if err != nil {
		// Metrics are best-effort; drop the batch rather than block callers.
		m.logger.Warn("Failed to flush metrics", zap.Error(err), zap.Int("count", len(batch)))
	}
}
