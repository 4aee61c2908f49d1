//go:build !ecsdebug

package sparse

const debug = false
