package sparse

// assert panics with msg when cond is false. Only reached in ecsdebug builds.
func assert(cond bool, msg string) {
	if !cond {
		panic("sparse: invariant violated: " + msg)
	}
}
