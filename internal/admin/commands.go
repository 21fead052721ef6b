package admin

import (
	"context"
	"fmt"

	"github.com/viewtube/viewtube/internal/netx"
)

func (a *App) url(path string) string {
	return a.baseURL + "/api/v1" + path
}

// Login asks for credentials and opens a session. The token cookies land in
// the jar and authenticate subsequent commands.
func (a *App) Login(ctx context.Context) {
	username, err := GetSimpleText(a.reader, "Enter username or email", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}

	password, err := GetPassword(a.out, "Enter password")
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}

	var resp struct {
		User struct {
			Username string `json:"username"`
			Email    string `json:"email"`
		} `json:"user"`
	}

	body := map[string]string{"username": username, "password": password}
	if err := netx.PostJSON(ctx, a.client, a.url("/users/login"), body, &resp); err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}

	fmt.Fprintf(a.out, "Logged in as %s <%s>\n", resp.User.Username, resp.User.Email)
}

// Refresh rotates the session's token pair using the refresh cookie.
func (a *App) Refresh(ctx context.Context) {
	if err := netx.PostJSON(ctx, a.client, a.url("/users/refresh-token"), map[string]string{}, nil); err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	fmt.Fprintln(a.out, "Session refreshed")
}

// ChangePassword verifies the old password server-side and stores the new
// one. Both passwords are read without echo.
func (a *App) ChangePassword(ctx context.Context) {
	oldPassword, err := GetPassword(a.out, "Enter current password")
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}

	newPassword, err := GetPassword(a.out, "Enter new password")
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}

	body := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	if err := netx.PostJSON(ctx, a.client, a.url("/users/change-password"), body, nil); err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}

	fmt.Fprintln(a.out, "Password changed")
}

// Logout revokes the server-side session.
func (a *App) Logout(ctx context.Context) {
	if err := netx.PostJSON(ctx, a.client, a.url("/users/logout"), map[string]string{}, nil); err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	fmt.Fprintln(a.out, "Logged out")
}
