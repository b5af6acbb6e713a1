package resultcache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths. Keys are storage keys ("<ns>:<key>").
type Hooks interface {
	// A read returned a value.
	Hit(storageKey string)

	// A read returned nothing.
	// reason ∈ {"absent", "transport", "decode", "not_ready", "closed"}
	Miss(storageKey, reason string)

	// A write was not performed.
	// reason ∈ {"encode", "transport", "rejected", "not_ready", "closed"}
	SetDropped(storageKey, reason string)

	// Remove failed and the error was returned to the caller.
	RemoveFailed(storageKey string, err error)

	// Clear finished. removed is the number of keys deleted; err is non-nil on failure.
	Cleared(namespace string, removed int, err error)
}

// Miss and drop reasons.
const (
	ReasonAbsent    = "absent"
	ReasonTransport = "transport"
	ReasonDecode    = "decode"
	ReasonEncode    = "encode"
	ReasonRejected  = "rejected"
	ReasonNotReady  = "not_ready"
	ReasonClosed    = "closed"
)

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                 {}
func (NopHooks) Miss(string, string)        {}
func (NopHooks) SetDropped(string, string)  {}
func (NopHooks) RemoveFailed(string, error) {}
func (NopHooks) Cleared(string, int, error) {}
