//go:build ecsdebug

package sparse

const debug = true
