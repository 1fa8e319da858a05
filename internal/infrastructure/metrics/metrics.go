package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ReferralMetrics covers the commission, rank and disbursement engines
// plus the job lanes.
type ReferralMetrics struct {
	CommissionsComputedTotal prometheus.CounterVec
	CommissionAmountTotal    prometheus.CounterVec

	DisbursedTotal       prometheus.CounterVec
	DisbursedAmountTotal prometheus.CounterVec
	DisburseSkippedTotal prometheus.CounterVec
	DisburseFailedTotal  prometheus.CounterVec

	RankPromotionsTotal prometheus.CounterVec
	BonusPaidTotal      prometheus.CounterVec

	JobsProcessedTotal prometheus.CounterVec
	JobRetriesTotal    prometheus.CounterVec
	DeadJobsTotal      prometheus.CounterVec
	JobDuration        prometheus.HistogramVec
	QueueDepth         prometheus.GaugeVec
}

func NewReferralMetrics() *ReferralMetrics {
	return &ReferralMetrics{
		CommissionsComputedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commissions_computed_total",
				Help: "Commission records produced by the computation engine",
			},
			[]string{"level", "status"},
		),

		CommissionAmountTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commission_amount_total",
				Help: "Total commission amount accrued",
			},
			[]string{"status"},
		),

		DisbursedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commissions_disbursed_total",
				Help: "Commission records flipped to DISBURSED",
			},
			[]string{"source"},
		),

		DisbursedAmountTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commissions_disbursed_amount_total",
				Help: "Total amount credited to wallets by disbursement",
			},
			[]string{"source"},
		),

		DisburseSkippedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "disburse_skipped_total",
				Help: "Records skipped during disbursement",
			},
			[]string{"reason"},
		),

		DisburseFailedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "disburse_failed_total",
				Help: "Records that failed during disbursement",
			},
			[]string{"source"},
		),

		RankPromotionsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rank_promotions_total",
				Help: "Rank promotions granted by the evaluation engine",
			},
			[]string{"rank"},
		),

		BonusPaidTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rank_bonus_paid_total",
				Help: "Rank bonuses credited to wallets",
			},
			[]string{"rank"},
		),

		JobsProcessedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobs_processed_total",
				Help: "Jobs finished by workers, by terminal outcome",
			},
			[]string{"lane", "type", "outcome"},
		),

		JobRetriesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "job_retries_total",
				Help: "Jobs requeued after a transient failure",
			},
			[]string{"lane", "type"},
		),

		DeadJobsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dead_jobs_total",
				Help: "Jobs moved to DEAD after exhausting retries or on a fatal fault",
			},
			[]string{"lane", "type"},
		),

		JobDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "job_duration_seconds",
				Help:    "Handler execution time per job",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"lane", "type"},
		),

		QueueDepth: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "queue_depth",
				Help: "Queued jobs per lane",
			},
			[]string{"lane"},
		),
	}
}

func (m *ReferralMetrics) RecordCommissionComputed(level, status string, amount float64) {
	if m == nil {
		return
	}
	m.CommissionsComputedTotal.WithLabelValues(level, status).Inc()
	m.CommissionAmountTotal.WithLabelValues(status).Add(amount)
}

func (m *ReferralMetrics) RecordDisbursed(source string, amount float64) {
	if m == nil {
		return
	}
	m.DisbursedTotal.WithLabelValues(source).Inc()
	m.DisbursedAmountTotal.WithLabelValues(source).Add(amount)
}

func (m *ReferralMetrics) RecordDisburseSkipped(reason string) {
	if m == nil {
		return
	}
	m.DisburseSkippedTotal.WithLabelValues(reason).Inc()
}

func (m *ReferralMetrics) RecordDisburseFailed(source string) {
	if m == nil {
		return
	}
	m.DisburseFailedTotal.WithLabelValues(source).Inc()
}

func (m *ReferralMetrics) RecordRankPromotion(rank string) {
	if m == nil {
		return
	}
	m.RankPromotionsTotal.WithLabelValues(rank).Inc()
}

func (m *ReferralMetrics) RecordBonusPaid(rank string) {
	if m == nil {
		return
	}
	m.BonusPaidTotal.WithLabelValues(rank).Inc()
}

func (m *ReferralMetrics) RecordJobProcessed(lane, jobType, outcome string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.JobsProcessedTotal.WithLabelValues(lane, jobType, outcome).Inc()
	m.JobDuration.WithLabelValues(lane, jobType).Observe(durationSeconds)
}

func (m *ReferralMetrics) RecordJobRetry(lane, jobType string) {
	if m == nil {
		return
	}
	m.JobRetriesTotal.WithLabelValues(lane, jobType).Inc()
}

func (m *ReferralMetrics) RecordDeadJob(lane, jobType string) {
	if m == nil {
		return
	}
	m.DeadJobsTotal.WithLabelValues(lane, jobType).Inc()
}

func (m *ReferralMetrics) RecordQueueDepth(lane string, depth float64) {
	if m == nil {
		return
	}
	m.QueueDepth.WithLabelValues(lane).Set(depth)
}
