package request

// Signal is the lifecycle decision for a request after its quote count moved.
type Signal string

const (
	SignalContinue Signal = "continue"
	SignalWarn     Signal = "warn"
	SignalClose    Signal = "close"
)

const (
	DefaultQuotaMax      = 10
	DefaultWarnThreshold = 8
)

// EvaluateQuota maps a post-increment quote count to a lifecycle signal.
func EvaluateQuota(newCount, quotaMax, warnThreshold int) Signal {
	switch {
	case newCount >= quotaMax:
		return SignalClose
	case newCount >= warnThreshold:
		return SignalWarn
	default:
		return SignalContinue
	}
}

// ShouldReopen reports whether a quote deletion takes a closed request back
// below the quota, in which case it returns to published.
func ShouldReopen(status Status, newCount, quotaMax int) bool {
	return status == StatusQuotaReached && newCount < quotaMax
}
