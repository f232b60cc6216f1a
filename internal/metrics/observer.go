package metrics

// ClientObserver receives the API client's telemetry.
type ClientObserver interface {
	ObserveRequest(method, endpoint, outcome string, seconds float64)
	RecordRefresh(success bool)
	RecordMockHit(endpoint string)
}

type nopObserver struct{}

// Nop discards everything.
func Nop() ClientObserver { return nopObserver{} }

func (nopObserver) ObserveRequest(string, string, string, float64) {}
func (nopObserver) RecordRefresh(bool)                             {}
func (nopObserver) RecordMockHit(string)                           {}
