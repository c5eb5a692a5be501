package controller

// Channel names an independent request sequence. Responses are only applied
// when they answer the newest request on their channel.
type Channel string

const (
	ChannelPrimary     Channel = "primary"
	ChannelSuggestions Channel = "suggestions"
	ChannelSemantic    Channel = "semantic"
)

// Monitor provides hooks to observe the controller.
// Implement this interface to track cache behaviour and request ordering.
// Hooks run on the controller goroutine and must not block.
type Monitor interface {
	CacheHit(key, query string)
	CacheMiss(key, query string)
	RequestIssued(ch Channel, seq uint64, query string)
	ResponseApplied(ch Channel, seq uint64)
	ResponseDiscarded(ch Channel, seq uint64)
	SearchFailed(ch Channel, seq uint64, err error)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) CacheHit(_, _ string)                        {}
func (n *noopMonitor) CacheMiss(_, _ string)                       {}
func (n *noopMonitor) RequestIssued(_ Channel, _ uint64, _ string) {}
func (n *noopMonitor) ResponseApplied(_ Channel, _ uint64)         {}
func (n *noopMonitor) ResponseDiscarded(_ Channel, _ uint64)       {}
func (n *noopMonitor) SearchFailed(_ Channel, _ uint64, _ error)   {}
