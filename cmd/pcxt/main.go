// Command pcxt runs the real-mode machine implemented by the xtcore
// package, bridging its serial UART to the controlling terminal with a
// single-threaded cooperative loop: poll stdin for one byte, drain the
// UART's egress FIFO to stdout, step the CPU once, sleep briefly.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sys/unix"

	"xtcore"
	"xtcore/cpu"
	"xtcore/devices"
)

func main() {
	os.Exit(run())
}

func run() int {
	drive := flag.String("drive", "./drive_c", "path to the virtual disk's host drive directory")
	debug := flag.Bool("debug", false, "enable verbose machine logging")
	tick := flag.Duration("tick", time.Millisecond, "interval between cooperative driver iterations")
	flag.Parse()

	m, err := xtcore.NewMachine(*drive, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pcxt: %v\n", err)
		return 1
	}
	defer m.Close()

	restore, err := setRawMode(os.Stdin.Fd())
	if err != nil {
		fmt.Fprintf(os.Stderr, "pcxt: warning: could not set raw terminal mode: %v\n", err)
	} else {
		defer restore()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pollIngress := func(uart *devices.SerialUART) {
		buf := make([]byte, 1)
		n, _ := unix.Read(int(os.Stdin.Fd()), buf)
		if n == 1 {
			uart.PushIngress(buf[0])
		}
	}
	drainEgress := func(b byte) {
		os.Stdout.Write([]byte{b})
	}

	err = m.Run(ctx, pollIngress, drainEgress, *tick)
	var illegal *cpu.ErrIllegalOpcode
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return 0
	case errors.As(err, &illegal):
		fmt.Fprintf(os.Stderr, "pcxt: %v\n", err)
		return 1
	default:
		fmt.Fprintf(os.Stderr, "pcxt: machine stopped: %v\n", err)
		return 1
	}
}

// setRawMode switches the given file descriptor's termios into raw,
// non-canonical, echo-disabled mode so guest keystrokes reach the UART
// ingress FIFO one byte at a time rather than buffered a line at a time,
// and returns a function that restores the terminal's prior settings.
func setRawMode(fd uintptr) (func(), error) {
	termios, err := unix.IoctlGetTermios(int(fd), unix.TCGETS)
	if err != nil {
		return nil, err
	}
	saved := *termios

	raw := saved
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.ISIG
	raw.Iflag &^= unix.IXON | unix.ICRNL
	raw.Cc[unix.VMIN] = 0
	raw.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(int(fd), unix.TCSETS, &raw); err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(int(fd), true); err != nil {
		return nil, err
	}
	return func() {
		_ = unix.IoctlSetTermios(int(fd), unix.TCSETS, &saved)
	}, nil
}
