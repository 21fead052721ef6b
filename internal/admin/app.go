// Package admin implements a small interactive console for operating a
// running ViewTube server over its HTTP API: log in, rotate the session,
// change the password, log out. Tokens travel in cookies, so the app keeps a
// cookie jar for the lifetime of the session.
package admin

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
)

type App struct {
	baseURL string
	client  *http.Client
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(baseURL string, in io.Reader, out io.Writer) (*App, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &App{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Jar: jar},
		reader:  bufio.NewReader(in),
		out:     out,
	}, nil
}

func (a *App) printMenu() {
	fmt.Fprintln(a.out, "Commands: login | refresh | change-password | logout | exit")
}

// Run reads commands until exit or EOF.
func (a *App) Run(ctx context.Context) {
	a.printMenu()

	for {
		cmd, err := GetSimpleText(a.reader, "Enter command", a.out)
		if err != nil {
			return
		}

		switch cmd {
		case "login":
			a.Login(ctx)
		case "refresh":
			a.Refresh(ctx)
		case "change-password":
			a.ChangePassword(ctx)
		case "logout":
			a.Logout(ctx)
		case "exit", "quit":
			return
		case "":
		default:
			fmt.Fprintf(a.out, "Unknown command: %s\n", cmd)
			a.printMenu()
		}
	}
}
