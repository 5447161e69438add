package domain

// Notifier delivers user-visible messages. Validation rejections, per-file
// upload failures and the one-time "processing complete" message all go
// through it; per-tick polling errors never do.
type Notifier interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Successf(format string, args ...any)
}

// NopNotifier discards all messages.
type NopNotifier struct{}

func (NopNotifier) Warnf(format string, args ...any)    {}
func (NopNotifier) Errorf(format string, args ...any)   {}
func (NopNotifier) Successf(format string, args ...any) {}
