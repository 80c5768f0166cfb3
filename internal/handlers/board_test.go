package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/board/internal/auth"
	"github.com/crucial707/board/internal/db"
	"github.com/go-chi/chi/v5"
)

func newTestHandler(t *testing.T) (*BoardHandler, sqlmock.Sqlmock, chi.Router) {
	t.Helper()
	pool, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	h, err := NewBoardHandler(db.NewManager(pool, db.SQLite("board.db")))
	if err != nil {
		t.Fatalf("NewBoardHandler: %v", err)
	}
	r := chi.NewRouter()
	h.Register(r)
	return h, mock, r
}

func postForm(r chi.Router, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func postRows(t *testing.T) *sqlmock.Rows {
	t.Helper()
	return sqlmock.NewRows([]string{"id", "nickname", "content", "password_hash", "created_at"})
}

func TestIndex_RendersPosts(t *testing.T) {
	_, mock, r := newTestHandler(t)

	created := time.Date(2024, 5, 17, 9, 30, 1, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, nickname, content, password_hash, created_at FROM posts ORDER BY created_at DESC`).
		WillReturnRows(postRows(t).AddRow(1, "alice", "hello", "", created))

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "alice") || !strings.Contains(body, "hello") {
		t.Errorf("body missing post data:\n%s", body)
	}
	if !strings.Contains(body, "2024-05-17 09:30:01") {
		t.Errorf("body missing formatted timestamp:\n%s", body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestIndex_ShowsNoticeFromQuery(t *testing.T) {
	_, mock, r := newTestHandler(t)

	mock.ExpectQuery(`SELECT id, nickname, content, password_hash, created_at FROM posts`).
		WillReturnRows(postRows(t))

	req := httptest.NewRequest("GET", "/?notice=Post+published.", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if !strings.Contains(rr.Body.String(), "Post published.") {
		t.Error("notice not rendered")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCreatePost_RedirectsAfterPost(t *testing.T) {
	_, mock, r := newTestHandler(t)

	mock.ExpectExec(`INSERT INTO posts \(nickname, content, password_hash\) VALUES \(\?, \?, \?\)`).
		WithArgs("alice", "hello", auth.Hash("secret")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rr := postForm(r, "/", url.Values{
		"nickname": {" alice "},
		"content":  {" hello "},
		"password": {"secret"},
	})

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); !strings.HasPrefix(loc, "/?notice=") {
		t.Errorf("Location: got %q, want success notice on index", loc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCreatePost_WithoutPasswordStoresEmptyDigest(t *testing.T) {
	_, mock, r := newTestHandler(t)

	mock.ExpectExec(`INSERT INTO posts`).
		WithArgs("alice", "hello", "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rr := postForm(r, "/", url.Values{"nickname": {"alice"}, "content": {"hello"}})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// Blank content must not touch storage: the only observable effect is
// the error notice on the redirect.
func TestCreatePost_BlankContentDoesNotInsert(t *testing.T) {
	_, mock, r := newTestHandler(t)

	rr := postForm(r, "/", url.Values{
		"nickname": {"alice"},
		"content":  {"   "},
	})

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); !strings.HasPrefix(loc, "/?error=") {
		t.Errorf("Location: got %q, want error notice on index", loc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected storage access: %v", err)
	}
}

func TestEditForm_PrefillsPost(t *testing.T) {
	_, mock, r := newTestHandler(t)

	mock.ExpectQuery(`SELECT id, nickname, content, password_hash, created_at FROM posts WHERE id = \?`).
		WithArgs(1).
		WillReturnRows(postRows(t).AddRow(1, "alice", "hello", auth.Hash("secret"), time.Now()))

	req := httptest.NewRequest("GET", "/edit/1", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `value="alice"`) || !strings.Contains(body, ">hello<") {
		t.Errorf("edit form not pre-filled:\n%s", body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestEditForm_MissingPostRedirects(t *testing.T) {
	_, mock, r := newTestHandler(t)

	mock.ExpectQuery(`SELECT id, nickname, content, password_hash, created_at FROM posts WHERE id = \?`).
		WithArgs(999).
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest("GET", "/edit/999", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); !strings.HasPrefix(loc, "/?error=") {
		t.Errorf("Location: got %q, want error notice", loc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// Wrong password re-renders the edit form with the typed data; no
// redirect, no update statement.
func TestUpdatePost_WrongPasswordReRenders(t *testing.T) {
	_, mock, r := newTestHandler(t)

	mock.ExpectQuery(`SELECT id, nickname, content, password_hash, created_at FROM posts WHERE id = \?`).
		WithArgs(1).
		WillReturnRows(postRows(t).AddRow(1, "alice", "hello", auth.Hash("secret"), time.Now()))

	rr := postForm(r, "/edit/1", url.Values{
		"nickname": {"alice"},
		"content":  {"goodbye"},
		"password": {"bad"},
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 re-render", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Wrong password.") {
		t.Errorf("missing password error:\n%s", body)
	}
	if !strings.Contains(body, ">goodbye<") {
		t.Errorf("typed content not retained:\n%s", body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected storage access: %v", err)
	}
}

func TestUpdatePost_CorrectPasswordUpdates(t *testing.T) {
	_, mock, r := newTestHandler(t)

	mock.ExpectQuery(`SELECT id, nickname, content, password_hash, created_at FROM posts WHERE id = \?`).
		WithArgs(1).
		WillReturnRows(postRows(t).AddRow(1, "alice", "hello", auth.Hash("secret"), time.Now()))
	mock.ExpectExec(`UPDATE posts SET nickname = \?, content = \? WHERE id = \?`).
		WithArgs("alice", "goodbye", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rr := postForm(r, "/edit/1", url.Values{
		"nickname": {"alice"},
		"content":  {"goodbye"},
		"password": {"secret"},
	})

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); !strings.HasPrefix(loc, "/?notice=") {
		t.Errorf("Location: got %q, want success notice", loc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUpdatePost_BlankFieldsReRender(t *testing.T) {
	_, mock, r := newTestHandler(t)

	mock.ExpectQuery(`SELECT id, nickname, content, password_hash, created_at FROM posts WHERE id = \?`).
		WithArgs(1).
		WillReturnRows(postRows(t).AddRow(1, "alice", "hello", auth.Hash("secret"), time.Now()))

	rr := postForm(r, "/edit/1", url.Values{
		"nickname": {"alice"},
		"content":  {"   "},
		"password": {"secret"},
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 re-render", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "required") {
		t.Errorf("missing validation error:\n%s", rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected storage access: %v", err)
	}
}

func TestDeletePost_WrongPasswordRedirectsWithoutMutation(t *testing.T) {
	_, mock, r := newTestHandler(t)

	mock.ExpectQuery(`SELECT id, nickname, content, password_hash, created_at FROM posts WHERE id = \?`).
		WithArgs(1).
		WillReturnRows(postRows(t).AddRow(1, "alice", "hello", auth.Hash("secret"), time.Now()))

	rr := postForm(r, "/delete/1", url.Values{"password": {"bad"}})

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); !strings.HasPrefix(loc, "/?error=") {
		t.Errorf("Location: got %q, want error notice", loc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected storage access: %v", err)
	}
}

func TestDeletePost_CorrectPasswordDeletes(t *testing.T) {
	_, mock, r := newTestHandler(t)

	mock.ExpectQuery(`SELECT id, nickname, content, password_hash, created_at FROM posts WHERE id = \?`).
		WithArgs(1).
		WillReturnRows(postRows(t).AddRow(1, "alice", "hello", auth.Hash("secret"), time.Now()))
	mock.ExpectExec(`DELETE FROM posts WHERE id = \?`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rr := postForm(r, "/delete/1", url.Values{"password": {"secret"}})

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAdminClear_DeletesEverything(t *testing.T) {
	_, mock, r := newTestHandler(t)

	mock.ExpectExec(`^DELETE FROM posts$`).
		WillReturnResult(sqlmock.NewResult(0, 9))

	req := httptest.NewRequest("GET", "/admin/clear", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); !strings.HasPrefix(loc, "/?notice=") {
		t.Errorf("Location: got %q, want notice", loc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestIndex_StorageErrorIs500(t *testing.T) {
	_, mock, r := newTestHandler(t)

	mock.ExpectQuery(`SELECT id, nickname, content, password_hash, created_at FROM posts`).
		WillReturnError(sql.ErrConnDone)

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
