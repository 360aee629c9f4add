package libs

import (
	"log"
	"os"
)

// Analytics is the capability interface over whatever marketing/chat SDK
// happens to be present. It is instrumentation only: nothing in the core
// depends on it for correctness, and a missing SDK is not an error.
type Analytics interface {
	Present() bool
	Init()
	SendEvent(name string, payload map[string]interface{})
}

// NoopAnalytics stands in when no SDK is configured.
type NoopAnalytics struct{}

func (NoopAnalytics) Present() bool { return false }
func (NoopAnalytics) Init()         {}
func (NoopAnalytics) SendEvent(name string, payload map[string]interface{}) {}

// LogAnalytics writes events to the process log. Useful in development to
// see what an embedded SDK would receive.
type LogAnalytics struct{}

func (LogAnalytics) Present() bool { return true }

func (LogAnalytics) Init() {
	log.Println("Analytics initialized (log sink)")
}

func (LogAnalytics) SendEvent(name string, payload map[string]interface{}) {
	log.Printf("analytics event %q: %v", name, payload)
}

// NewAnalytics picks the sink from the ANALYTICS env var ("log" or off).
func NewAnalytics() Analytics {
	if os.Getenv("ANALYTICS") == "log" {
		a := LogAnalytics{}
		a.Init()
		return a
	}
	return NoopAnalytics{}
}
