package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a stub.
type execIface interface {
	isLoggedIn() bool
	Ping(ctx context.Context) error
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Refresh(ctx context.Context) error
	Upload(ctx context.Context) error
	Download(ctx context.Context) error
	List(ctx context.Context) error
	Info(ctx context.Context) error
	Delete(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads a line from the scanner, takes the first token as the
// command, and dispatches to methods on 'a'. The loop exits on scanner EOF
// or when the user types "exit" or "quit". Command handlers log their own
// errors; the loop ignores them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("rf> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: ping, refresh, (u)pload, (d)ownload, (l)ist, info, delete, logout, exit")
			} else {
				printlnFn("Available commands: ping, register, login, exit")
			}

		case "ping":
			_ = a.Ping(ctx)

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "u", "upload":
			_ = a.Upload(ctx)

		case "d", "download":
			_ = a.Download(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "info":
			_ = a.Info(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
