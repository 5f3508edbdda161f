package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/storygen/internal/client/services"
)

// printlnFn and printFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Signup(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Status(ctx context.Context) error
	Upload(ctx context.Context, path string) error
	Show(ctx context.Context) error
	Export(ctx context.Context, format, dir string) error
	Copy(ctx context.Context) error
	resolveAuthRequest(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: login, signup, upload <path>, show, export <pdf|docx|html> [dir], copy, status, exit"
	helpSignedIn  = "Available commands: upload <path>, show, export <pdf|docx|html> [dir], copy, whoami, status, logout, exit"
)

// runREPL starts a simple read-eval-print loop for the storygen CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Command errors are printed and the loop
// carries on. After every command a pending request for credentials is
// resolved, so an upload started while signed out continues once the user
// signs in. The loop exits on EOF or when the user types "exit" or "quit".
//
//	help                          show available commands
//	login | signup                authenticate
//	logout | whoami               session management
//	status                        check the server and the session
//	upload <path>                 extract stories from a .pdf or .docx file
//	show                          print the latest stories
//	export <pdf|docx|html> [dir]  save the latest stories
//	copy                          copy the latest stories to the clipboard
//	exit | quit                   leave the program
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printFn(fmt.Sprintf("storygen %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "login":
			report(a.Login(ctx))

		case "signup", "register":
			report(a.Signup(ctx))

		case "logout":
			report(a.Logout(ctx))

		case "whoami":
			report(a.Whoami(ctx))

		case "status":
			report(a.Status(ctx))

		case "upload":
			if len(args) != 1 {
				printlnFn("Usage: upload <path>")
				continue
			}
			report(a.Upload(ctx, args[0]))

		case "show":
			report(a.Show(ctx))

		case "export":
			if len(args) < 1 || len(args) > 2 {
				printlnFn("Usage: export <pdf|docx|html> [dir]")
				continue
			}
			dir := ""
			if len(args) == 2 {
				dir = args[1]
			}
			report(a.Export(ctx, args[0], dir))

		case "copy":
			report(a.Copy(ctx))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err := a.resolveAuthRequest(ctx); err != nil {
			return
		}
	}
}

func report(err error) {
	if err != nil {
		printlnFn("Error:", services.UserMessage(err))
	}
}
