package business_flow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deliveryAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wasend_delivery_attempts_total",
		Help: "Send attempts against the messaging channel, by message type and outcome",
	}, []string{"type", "outcome"})

	deliveryRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wasend_delivery_retries_total",
		Help: "Retry attempts performed by the delivery executor",
	}, []string{"type"})

	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wasend_batches_total",
		Help: "Processed send batches by result",
	}, []string{"result"})

	batchRecipientsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wasend_batch_recipients_total",
		Help: "Recipients processed across all batches, by final status",
	}, []string{"status"})
)
