//go:build !unix

package lock

const publishesAtomically = false
