package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Latency of every HTTP handler by matched route
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "misika_http_request_duration_seconds",
		Help:    "Latency of HTTP handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// Checkout attempts by outcome
	CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "misika_checkout_total",
		Help: "Checkout attempts by result",
	}, []string{"result"})

	// Email deliveries by template and outcome
	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "misika_notifications_total",
		Help: "Notification deliveries by kind and result",
	}, []string{"kind", "result"})

	// Jobs waiting in the notification queue
	NotificationQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "misika_notification_queue_depth",
		Help: "Notification jobs waiting to be delivered",
	})
)

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestDuration,
			CheckoutTotal,
			NotificationsTotal,
			NotificationQueueDepth,
		)
	})
}
