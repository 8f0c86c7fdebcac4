package telemetry

import (
	"time"

	metrics "github.com/armon/go-metrics"

	"github.com/cosmos/cosmos-sdk/telemetry"
)

// Prometheus metric labels.
const (
	LabelOperation = "operation"
	LabelProtocol  = "protocol"
	LabelStage     = "stage"
	LabelReason    = "reason"
)

const moduleName = "photongov"

// ReportApplied records a governance operation applied to a registry entry.
func ReportApplied(operation, protocol string, signers int) {
	labels := []metrics.Label{
		telemetry.NewLabel(LabelOperation, operation),
		telemetry.NewLabel(LabelProtocol, protocol),
	}

	telemetry.IncrCounterWithLabels([]string{moduleName, "operation", "applied"}, 1, labels)
	telemetry.SetGaugeWithLabels([]string{moduleName, "operation", "signers"}, float32(signers), labels)
}

// ReportRejected records a governance operation discarded at the given stage.
func ReportRejected(stage, reason string) {
	telemetry.IncrCounterWithLabels(
		[]string{moduleName, "operation", "rejected"},
		1,
		[]metrics.Label{
			telemetry.NewLabel(LabelStage, stage),
			telemetry.NewLabel(LabelReason, reason),
		},
	)
}

// MeasureApply records the latency of a single apply call.
func MeasureApply(start time.Time) {
	telemetry.ModuleMeasureSince(moduleName, start, "operation", "apply")
}

// ReportBundleEmitted records a signature bundle reaching quorum in the aggregator.
func ReportBundleEmitted(signers int, waited time.Duration) {
	telemetry.IncrCounter(1, moduleName, "aggregator", "bundle", "emitted")
	telemetry.SetGauge(float32(waited.Milliseconds()), moduleName, "aggregator", "bundle", "wait_ms")
	telemetry.SetGauge(float32(signers), moduleName, "aggregator", "bundle", "signers")
}

// ReportSignatureDropped records a signature the aggregator refused.
func ReportSignatureDropped(reason string) {
	telemetry.IncrCounterWithLabels(
		[]string{moduleName, "aggregator", "signature", "dropped"},
		1,
		[]metrics.Label{telemetry.NewLabel(LabelReason, reason)},
	)
}

// ReportExpired records aggregation buffers discarded at the end of their retention window.
func ReportExpired(count int) {
	if count == 0 {
		return
	}
	telemetry.IncrCounter(float32(count), moduleName, "aggregator", "buffer", "expired")
}

// ReportPending records the number of fingerprints currently being aggregated.
func ReportPending(count int) {
	telemetry.SetGauge(float32(count), moduleName, "aggregator", "buffer", "pending")
}

// ReportAttestation records a keeper attestation published by the collector.
func ReportAttestation(operation string) {
	telemetry.IncrCounterWithLabels(
		[]string{moduleName, "collector", "attested"},
		1,
		[]metrics.Label{telemetry.NewLabel(LabelOperation, operation)},
	)
}

// ReportTransportMessage records an envelope received from the message queue.
func ReportTransportMessage(outcome string) {
	telemetry.IncrCounterWithLabels(
		[]string{moduleName, "transport", "message"},
		1,
		[]metrics.Label{telemetry.NewLabel(LabelReason, outcome)},
	)
}

// ReportSubmission records the outcome of submitting an emitted bundle to the ledger.
func ReportSubmission(operation, outcome string) {
	telemetry.IncrCounterWithLabels(
		[]string{moduleName, "relayer", "submission"},
		1,
		[]metrics.Label{
			telemetry.NewLabel(LabelOperation, operation),
			telemetry.NewLabel(LabelReason, outcome),
		},
	)
}
