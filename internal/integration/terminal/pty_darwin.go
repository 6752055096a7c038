//go:build darwin

package terminal

import (
	"os"
	"os/exec"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// startPTY starts a command with a PTY on macOS.
func startPTY(cmd *exec.Cmd, cols, rows uint16) (PTY, error) {
	master, slave, err := openPTYDarwin()
	if err != nil {
		return nil, err
	}

	if err := setWinSizeDarwin(master, cols, rows); err != nil {
		master.Close()
		slave.Close()
		return nil, err
	}

	// The slave becomes the child's controlling terminal.
	cmd.Stdin = slave
	cmd.Stdout = slave
	cmd.Stderr = slave

	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
	cmd.SysProcAttr.Setctty = true

	if err := cmd.Start(); err != nil {
		master.Close()
		slave.Close()
		return nil, err
	}

	// The parent only keeps the master side.
	slave.Close()

	return &darwinPTY{master: master}, nil
}

// darwinPTY implements PTY for macOS.
type darwinPTY struct {
	master *os.File
}

func (p *darwinPTY) File() *os.File {
	return p.master
}

func (p *darwinPTY) Read(buf []byte) (int, error) {
	return p.master.Read(buf)
}

func (p *darwinPTY) Write(data []byte) (int, error) {
	return p.master.Write(data)
}

func (p *darwinPTY) Resize(cols, rows uint16) error {
	return setWinSizeDarwin(p.master, cols, rows)
}

func (p *darwinPTY) Close() error {
	return p.master.Close()
}

// openPTYDarwin opens a master/slave pair via /dev/ptmx, granting and
// unlocking the slave before opening it.
func openPTYDarwin() (*os.File, *os.File, error) {
	master, err := os.OpenFile("/dev/ptmx", os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}

	fd := int(master.Fd())
	if err := ioctlDarwin(fd, unix.TIOCPTYGRANT, 0); err != nil {
		master.Close()
		return nil, nil, err
	}
	if err := ioctlDarwin(fd, unix.TIOCPTYUNLK, 0); err != nil {
		master.Close()
		return nil, nil, err
	}

	var name [128]byte
	if err := ioctlDarwin(fd, unix.TIOCPTYGNAME, uintptr(unsafe.Pointer(&name[0]))); err != nil {
		master.Close()
		return nil, nil, err
	}
	end := 0
	for end < len(name) && name[end] != 0 {
		end++
	}

	slave, err := os.OpenFile(string(name[:end]), os.O_RDWR, 0)
	if err != nil {
		master.Close()
		return nil, nil, err
	}

	return master, slave, nil
}

func ioctlDarwin(fd int, req uint, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), arg)
	if errno != 0 {
		return errno
	}
	return nil
}

// setWinSizeDarwin sets the PTY's window size.
func setWinSizeDarwin(f *os.File, cols, rows uint16) error {
	ws := &unix.Winsize{Row: rows, Col: cols}
	return unix.IoctlSetWinsize(int(f.Fd()), unix.TIOCSWINSZ, ws)
}
