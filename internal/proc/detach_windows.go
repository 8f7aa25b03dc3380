//go:build windows

package proc

import "syscall"

// detachedProcess is CreationFlags' DETACHED_PROCESS, which syscall does not
// name.
const detachedProcess = 0x00000008

// detachedSysProcAttr starts the child without a console and in its own
// process group, mirroring `start` in a batch script.
func detachedSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | detachedProcess,
	}
}
