package db

import "testing"

func TestPostgresRebind(t *testing.T) {
	b := Postgres("postgres://localhost/board")
	got := b.Rebind(`INSERT INTO posts (nickname, content, password_hash) VALUES (?, ?, ?)`)
	want := `INSERT INTO posts (nickname, content, password_hash) VALUES ($1, $2, $3)`
	if got != want {
		t.Errorf("Rebind:\n got %s\nwant %s", got, want)
	}
}

func TestPostgresRebind_NoPlaceholders(t *testing.T) {
	b := Postgres("postgres://localhost/board")
	q := `DELETE FROM posts`
	if got := b.Rebind(q); got != q {
		t.Errorf("Rebind changed a placeholder-free query: %s", got)
	}
}

func TestSQLiteRebind_Passthrough(t *testing.T) {
	b := SQLite("board.db")
	q := `SELECT id FROM posts WHERE id = ?`
	if got := b.Rebind(q); got != q {
		t.Errorf("Rebind: got %s, want unchanged", got)
	}
}

func TestBackendNames(t *testing.T) {
	if got := Postgres("x").Name(); got != "postgres" {
		t.Errorf("postgres Name: %s", got)
	}
	if got := SQLite("x").Name(); got != "sqlite" {
		t.Errorf("sqlite Name: %s", got)
	}
}
