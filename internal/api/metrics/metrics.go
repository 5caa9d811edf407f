// Package metrics defines and registers the custom Prometheus metrics of the
// sweet shop inventory API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto; HTTP request metrics come from the
// echoprometheus middleware mounted by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sweetshop"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login attempts.
// Labels:
//   - action: "register" or "login"
//   - result: "success", "invalid", "conflict" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register and login attempts, by action and result.",
	},
	[]string{"action", "result"},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// SweetsCreatedTotal counts sweets added to the catalog.
var SweetsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweets_created_total",
		Help:      "Total number of sweets created.",
	},
)

// PurchasesTotal counts purchase requests.
// Label:
//   - result: "success", "replayed", "insufficient_stock", "not_found",
//     "invalid", "conflict" or "error"
var PurchasesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchases_total",
		Help:      "Total number of purchase requests, by result.",
	},
	[]string{"result"},
)

// UnitsPurchasedTotal sums the quantities of successful purchases.
var UnitsPurchasedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "units_purchased_total",
		Help:      "Total number of units sold through successful purchases.",
	},
)

// UnitsRestockedTotal sums the quantities of successful restocks.
var UnitsRestockedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "units_restocked_total",
		Help:      "Total number of units added through restocks.",
	},
)
