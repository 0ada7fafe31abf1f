package ffmpegsource

const (
	DefaultMinPort = 5000
	DefaultMaxPort = 65000
)

// ClampPorts resolves the local RTP port range. Negative values select the
// defaults, and the range always holds at least an RTP/RTCP pair.
func ClampPorts(minPort, maxPort int) (int, int) {
	lo, hi := DefaultMinPort, DefaultMaxPort
	if minPort >= 0 {
		lo = minPort
	}
	if maxPort >= 0 {
		hi = maxPort
	}
	if hi < lo+2 {
		hi = lo + 2
	}
	return lo, hi
}
