// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/tapvote/auth"
	"github.com/danielhkuo/tapvote/db"
	"github.com/danielhkuo/tapvote/models"
	"github.com/danielhkuo/tapvote/testutil"
	"github.com/danielhkuo/tapvote/token"
)

func TestAdminLogin(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	codec := token.New(testutil.TestSecretKey, 300*time.Second)
	handler := NewAuthHandler(conn, codec)

	t.Run("before setup", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/admin/login",
			models.AdminLoginRequest{Password: "anything"}, nil)
		w := httptest.NewRecorder()
		handler.Login(w, req)
		testutil.AssertStatus(t, w, http.StatusConflict)
	})

	hash, err := auth.HashPassword("hunter2-plus")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if err := db.SetAdminPassword(conn, hash); err != nil {
		t.Fatalf("SetAdminPassword failed: %v", err)
	}

	t.Run("wrong password", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/admin/login",
			models.AdminLoginRequest{Password: "wrong"}, nil)
		w := httptest.NewRecorder()
		handler.Login(w, req)
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("empty password", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/admin/login",
			models.AdminLoginRequest{}, nil)
		w := httptest.NewRecorder()
		handler.Login(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("correct password", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/admin/login",
			models.AdminLoginRequest{Password: "hunter2-plus"}, nil)
		w := httptest.NewRecorder()
		handler.Login(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.AdminLoginResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.AdminToken == "" {
			t.Fatal("Expected an admin token")
		}
		if err := codec.VerifyAdmin(resp.AdminToken); err != nil {
			t.Errorf("Issued admin token failed verification: %v", err)
		}
	})
}
