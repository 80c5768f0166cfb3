package repo

import (
	"context"

	"github.com/crucial707/board/internal/db"
	"github.com/crucial707/board/internal/models"
)

// ========================
// REPOSITORY STRUCT
// ========================

// PostRepo is the sole reader and writer of the posts table. Queries
// are written with `?` placeholders and rebound for the active backend,
// so PostRepo never branches on which backend it runs against.
type PostRepo struct {
	q       db.Querier
	backend db.Backend
}

func NewPostRepo(q db.Querier, backend db.Backend) *PostRepo {
	return &PostRepo{q: q, backend: backend}
}

// ========================
// CREATE POST
// ========================

// Create inserts a post and commits immediately. passwordHash is the
// digest from auth.Hash; created_at is set by the storage default.
func (r *PostRepo) Create(ctx context.Context, nickname, content, passwordHash string) error {
	_, err := r.q.ExecContext(ctx,
		r.backend.Rebind(`INSERT INTO posts (nickname, content, password_hash) VALUES (?, ?, ?)`),
		nickname, content, passwordHash,
	)
	return err
}

// ========================
// GET POST BY ID
// ========================

// GetByID returns sql.ErrNoRows (wrapped by the driver or not) when no
// post has the given id.
func (r *PostRepo) GetByID(ctx context.Context, id int) (models.Post, error) {
	var post models.Post
	err := r.q.QueryRowContext(ctx,
		r.backend.Rebind(`SELECT id, nickname, content, password_hash, created_at FROM posts WHERE id = ?`),
		id,
	).Scan(
		&post.ID,
		&post.Nickname,
		&post.Content,
		&post.PasswordHash,
		&post.CreatedAt,
	)
	return post, err
}

// ========================
// UPDATE POST BY ID
// ========================

// Update changes nickname and content only; password_hash and
// created_at are never touched.
func (r *PostRepo) Update(ctx context.Context, id int, nickname, content string) error {
	_, err := r.q.ExecContext(ctx,
		r.backend.Rebind(`UPDATE posts SET nickname = ?, content = ? WHERE id = ?`),
		nickname, content, id,
	)
	return err
}

// ========================
// DELETE POST BY ID
// ========================

func (r *PostRepo) Delete(ctx context.Context, id int) error {
	_, err := r.q.ExecContext(ctx,
		r.backend.Rebind(`DELETE FROM posts WHERE id = ?`),
		id,
	)
	return err
}

// ========================
// DELETE ALL POSTS
// ========================

// DeleteAll wipes the table unconditionally. No confirmation, no
// backup; callers own any prompting.
func (r *PostRepo) DeleteAll(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM posts`)
	return err
}

// ========================
// LIST ALL POSTS
// ========================

// ListAll returns every post, newest first. Full-table scan on every
// call; the board has no pagination.
func (r *PostRepo) ListAll(ctx context.Context) ([]models.Post, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, nickname, content, password_hash, created_at FROM posts ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Nickname, &p.Content, &p.PasswordHash, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ========================
// COUNT POSTS
// ========================

func (r *PostRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n)
	return n, err
}
