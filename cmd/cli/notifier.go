package cli

import "fmt"

// consoleNotifier prints user-facing messages to stdout.
type consoleNotifier struct{}

func (consoleNotifier) Warnf(format string, args ...any) {
	fmt.Printf("⚠️  "+format+"\n", args...)
}

func (consoleNotifier) Errorf(format string, args ...any) {
	fmt.Printf("❌ "+format+"\n", args...)
}

func (consoleNotifier) Successf(format string, args ...any) {
	fmt.Printf("✅ "+format+"\n", args...)
}
