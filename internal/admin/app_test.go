package admin

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubPassword(t *testing.T, passwords ...string) {
	t.Helper()
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })

	i := 0
	readPassword = func(fd int) ([]byte, error) {
		if i >= len(passwords) {
			t.Fatal("readPassword called more times than scripted")
		}
		pw := passwords[i]
		i++
		return []byte(pw), nil
	}
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("  hello world  \n"))

	got, err := GetSimpleText(reader, "Say something", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Contains(t, out.String(), "Say something")
}

func TestGetSimpleText_EOFWithPartialLine(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("partial"))

	got, err := GetSimpleText(reader, "Prompt", &out)
	require.NoError(t, err)
	assert.Equal(t, "partial", got)
}

func TestLoginCommand(t *testing.T) {
	stubPassword(t, "Secret1!")

	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/users/login", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		http.SetCookie(w, &http.Cookie{Name: "accessToken", Value: "tok", Path: "/"})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"username":"alice","email":"alice@example.com"}}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	app, err := NewApp(srv.URL, strings.NewReader("alice\n"), &out)
	require.NoError(t, err)

	app.Login(context.Background())

	assert.Equal(t, "alice", gotBody["username"])
	assert.Equal(t, "Secret1!", gotBody["password"])
	assert.Contains(t, out.String(), "Logged in as alice <alice@example.com>")
}

func TestLoginCommand_Rejected(t *testing.T) {
	stubPassword(t, "wrong")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	app, err := NewApp(srv.URL, strings.NewReader("alice\n"), &out)
	require.NoError(t, err)

	app.Login(context.Background())

	assert.Contains(t, out.String(), "401")
	assert.NotContains(t, out.String(), "Logged in as")
}

func TestChangePasswordCommand(t *testing.T) {
	stubPassword(t, "OldPw1!", "NewPw2!")

	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/users/change-password", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"message":"password changed"}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	app, err := NewApp(srv.URL, strings.NewReader(""), &out)
	require.NoError(t, err)

	app.ChangePassword(context.Background())

	assert.Equal(t, "OldPw1!", gotBody["oldPassword"])
	assert.Equal(t, "NewPw2!", gotBody["newPassword"])
	assert.Contains(t, out.String(), "Password changed")
}

func TestCookiesCarryAcrossCommands(t *testing.T) {
	stubPassword(t, "Secret1!")

	var logoutCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/users/login":
			http.SetCookie(w, &http.Cookie{Name: "accessToken", Value: "tok", Path: "/"})
			_, _ = w.Write([]byte(`{"user":{"username":"alice","email":"a@b.c"}}`))
		case "/api/v1/users/logout":
			if ck, err := r.Cookie("accessToken"); err == nil {
				logoutCookie = ck.Value
			}
			_, _ = w.Write([]byte(`{"message":"logged out"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	var out bytes.Buffer
	app, err := NewApp(srv.URL, strings.NewReader("alice\n"), &out)
	require.NoError(t, err)

	app.Login(context.Background())
	app.Logout(context.Background())

	assert.Equal(t, "tok", logoutCookie)
	assert.Contains(t, out.String(), "Logged out")
}

func TestRun_DispatchesAndExits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	app, err := NewApp(srv.URL, strings.NewReader("refresh\nbogus\nexit\n"), &out)
	require.NoError(t, err)

	app.Run(context.Background())

	assert.Contains(t, out.String(), "Session refreshed")
	assert.Contains(t, out.String(), "Unknown command: bogus")
}
