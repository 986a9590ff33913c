package client

import (
	"fmt"
	"io"
)

// SessionExpiredMessage is shown when a non-public page receives a 401
const SessionExpiredMessage = "Your session has expired. Please log in again."

// Pages reachable without a session. A 401 on these does not redirect, which
// would otherwise loop back to the page itself.
var publicPages = map[string]bool{
	"login":    true,
	"register": true,
}

// IsPublicPage reports whether page is exempt from the redirect on 401
func IsPublicPage(page string) bool {
	return publicPages[page]
}

// Navigator receives the user-facing side effects of an expired session
type Navigator interface {
	Notify(message string)
	RedirectToLogin()
}

// TerminalNavigator reports session expiry on a terminal. "Navigating" to the
// login page means telling the user which command to run.
type TerminalNavigator struct {
	out io.Writer
}

// NewTerminalNavigator creates a navigator writing to out (usually stderr)
func NewTerminalNavigator(out io.Writer) *TerminalNavigator {
	return &TerminalNavigator{out: out}
}

func (n *TerminalNavigator) Notify(message string) {
	fmt.Fprintf(n.out, "⚠ %s\n", message)
}

func (n *TerminalNavigator) RedirectToLogin() {
	fmt.Fprintln(n.out, "Run 'foodctl login' to sign in.")
}

type nopNavigator struct{}

func (nopNavigator) Notify(string)   {}
func (nopNavigator) RedirectToLogin() {}
