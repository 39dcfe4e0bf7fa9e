package rangingsensor

// Interface is the ranging device capability the session drives. Implementations wrap a
// vendor driver; none of them do any ranging maths themselves.
type Interface interface {
	Init() error
	ReadID() (uint32, error)
	GetCapabilities() (DeviceCapabilities, error)
	ConfigProfile(profile ProfileConfig) error
	Start(mode RangingMode) error
	Stop() error

	// GetDistance fills result with the latest measurement without blocking. It returns
	// ErrNotReady if no new measurement is available since the previous call.
	GetDistance(result *RangingResult) error

	Close() error
}
