package interp

// flowKind tracks a pending break, continue, or return signal as it unwinds
// from the builtin that raised it to the loop or function that consumes it.
type flowKind int

const (
	flowNone flowKind = iota
	flowBreak
	flowContinue
	flowReturn
)

type controlFlow struct {
	kind flowKind
	// levels is the remaining loop count for break and continue.
	levels int
	// status carries the return builtin's argument.
	status int
}

func (c *controlFlow) active() bool {
	return c.kind != flowNone
}

func (c *controlFlow) reset() {
	*c = controlFlow{}
}

// consumeLoop is called by an enclosing loop when a break or continue
// reaches it. It reports whether the signal stops here (stop) and whether
// the loop should continue iterating (iterate).
func (c *controlFlow) consumeLoop() (stop, iterate bool) {
	switch c.kind {
	case flowBreak:
		if c.levels > 1 {
			c.levels--
			return true, false
		}
		c.reset()
		return true, false
	case flowContinue:
		if c.levels > 1 {
			c.levels--
			return true, false
		}
		c.reset()
		return false, true
	case flowReturn:
		return true, false
	}
	return false, false
}
