//go:build !windows

package proc

import "syscall"

// detachedSysProcAttr starts the child in its own session so it is not
// killed when our controlling terminal goes away.
func detachedSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
