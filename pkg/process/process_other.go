//go:build !unix && !windows

package process

func state(int) State {
	return Unknown
}
