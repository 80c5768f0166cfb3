package handlers

import (
	"database/sql"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/crucial707/board/internal/auth"
	"github.com/crucial707/board/internal/db"
	"github.com/crucial707/board/internal/metrics"
	"github.com/crucial707/board/internal/models"
	"github.com/crucial707/board/internal/repo"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// BoardHandler serves the board pages. Every request opens its own
// db.Session and closes it on the way out; repositories are built per
// request over that session.
type BoardHandler struct {
	DB   *db.Manager
	tmpl *template.Template
}

func NewBoardHandler(manager *db.Manager) (*BoardHandler, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &BoardHandler{DB: manager, tmpl: tmpl}, nil
}

// Register mounts the board routes on r.
func (h *BoardHandler) Register(r chi.Router) {
	r.Get("/", h.Index)
	r.Post("/", h.CreatePost)
	r.Get("/edit/{id}", h.EditForm)
	r.Post("/edit/{id}", h.UpdatePost)
	r.Post("/delete/{id}", h.DeletePost)
	r.Get("/admin/clear", h.AdminClear)
}

//
// ==========================
// View models
// ==========================
//

type postView struct {
	ID       int
	Nickname string
	Content  string
	Date     string
}

type indexView struct {
	Posts  []postView
	Notice string
	Error  string
}

type editView struct {
	ID       int
	Nickname string
	Content  string
	Error    string
}

func toPostView(p models.Post) postView {
	return postView{
		ID:       p.ID,
		Nickname: p.Nickname,
		Content:  p.Content,
		Date:     p.CreatedAt.Display(),
	}
}

//
// ==========================
// Index (GET /)
// ==========================
//

func (h *BoardHandler) Index(w http.ResponseWriter, r *http.Request) {
	sess := h.DB.Session()
	defer sess.Close()

	posts, err := repo.NewPostRepo(sess, h.DB.Backend()).ListAll(r.Context())
	if err != nil {
		h.serverError(w, r, "list posts", err)
		return
	}

	view := indexView{
		Notice: r.URL.Query().Get("notice"),
		Error:  r.URL.Query().Get("error"),
	}
	for _, p := range posts {
		view.Posts = append(view.Posts, toPostView(p))
	}
	h.render(w, r, "index.html", view)
}

//
// ==========================
// Create Post (POST /)
// ==========================
//

func (h *BoardHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectIndex(w, r, "", "Invalid form submission.")
		return
	}

	input := struct {
		Nickname string `validate:"required"`
		Content  string `validate:"required"`
	}{
		Nickname: strings.TrimSpace(r.PostFormValue("nickname")),
		Content:  strings.TrimSpace(r.PostFormValue("content")),
	}
	password := strings.TrimSpace(r.PostFormValue("password"))

	if err := validate.Struct(input); err != nil {
		redirectIndex(w, r, "", "Nickname and content are required.")
		return
	}

	// Posts created without a password keep an empty digest and can
	// never be edited or deleted through the password-gated routes.
	passwordHash := ""
	if password != "" {
		passwordHash = auth.Hash(password)
	}

	sess := h.DB.Session()
	defer sess.Close()

	if err := repo.NewPostRepo(sess, h.DB.Backend()).Create(r.Context(), input.Nickname, input.Content, passwordHash); err != nil {
		h.serverError(w, r, "create post", err)
		return
	}
	metrics.PostsCreated.Inc()
	redirectIndex(w, r, "Post published.", "")
}

//
// ==========================
// Edit Form (GET /edit/{id})
// ==========================
//

func (h *BoardHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		redirectIndex(w, r, "", "Post not found.")
		return
	}

	sess := h.DB.Session()
	defer sess.Close()

	post, err := repo.NewPostRepo(sess, h.DB.Backend()).GetByID(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		redirectIndex(w, r, "", "Post not found.")
		return
	}
	if err != nil {
		h.serverError(w, r, "get post", err)
		return
	}

	h.render(w, r, "edit.html", editView{
		ID:       post.ID,
		Nickname: post.Nickname,
		Content:  post.Content,
	})
}

//
// ==========================
// Update Post (POST /edit/{id})
// ==========================
//

func (h *BoardHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		redirectIndex(w, r, "", "Post not found.")
		return
	}
	if err := r.ParseForm(); err != nil {
		redirectIndex(w, r, "", "Invalid form submission.")
		return
	}

	nickname := strings.TrimSpace(r.PostFormValue("nickname"))
	content := strings.TrimSpace(r.PostFormValue("content"))
	password := strings.TrimSpace(r.PostFormValue("password"))

	sess := h.DB.Session()
	defer sess.Close()
	posts := repo.NewPostRepo(sess, h.DB.Backend())

	post, err := posts.GetByID(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		redirectIndex(w, r, "", "Post not found.")
		return
	}
	if err != nil {
		h.serverError(w, r, "get post", err)
		return
	}

	// Re-render keeps whatever the author already typed.
	view := editView{ID: post.ID, Nickname: nickname, Content: content}
	if view.Nickname == "" {
		view.Nickname = post.Nickname
	}
	if view.Content == "" {
		view.Content = post.Content
	}

	if !auth.Verify(post.PasswordHash, password) {
		view.Error = "Wrong password."
		h.render(w, r, "edit.html", view)
		return
	}

	input := struct {
		Nickname string `validate:"required"`
		Content  string `validate:"required"`
	}{Nickname: nickname, Content: content}
	if err := validate.Struct(input); err != nil {
		view.Error = "Nickname and content are required."
		h.render(w, r, "edit.html", view)
		return
	}

	if err := posts.Update(r.Context(), id, nickname, content); err != nil {
		h.serverError(w, r, "update post", err)
		return
	}
	redirectIndex(w, r, "Post updated.", "")
}

//
// ==========================
// Delete Post (POST /delete/{id})
// ==========================
//

func (h *BoardHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		redirectIndex(w, r, "", "Post not found.")
		return
	}
	if err := r.ParseForm(); err != nil {
		redirectIndex(w, r, "", "Invalid form submission.")
		return
	}
	password := strings.TrimSpace(r.PostFormValue("password"))

	sess := h.DB.Session()
	defer sess.Close()
	posts := repo.NewPostRepo(sess, h.DB.Backend())

	post, err := posts.GetByID(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		redirectIndex(w, r, "", "Post not found.")
		return
	}
	if err != nil {
		h.serverError(w, r, "get post", err)
		return
	}

	if !auth.Verify(post.PasswordHash, password) {
		redirectIndex(w, r, "", "Wrong password.")
		return
	}

	if err := posts.Delete(r.Context(), id); err != nil {
		h.serverError(w, r, "delete post", err)
		return
	}
	metrics.PostsDeleted.Inc()
	redirectIndex(w, r, "Post deleted.", "")
}

//
// ==========================
// Admin Clear (GET /admin/clear)
// ==========================
//

// AdminClear wipes every post. Deliberately unauthenticated, matching
// the board's development-convenience endpoint.
func (h *BoardHandler) AdminClear(w http.ResponseWriter, r *http.Request) {
	sess := h.DB.Session()
	defer sess.Close()

	if err := repo.NewPostRepo(sess, h.DB.Backend()).DeleteAll(r.Context()); err != nil {
		h.serverError(w, r, "clear posts", err)
		return
	}
	metrics.PostsDeleted.Inc()
	redirectIndex(w, r, "All posts deleted.", "")
}

//
// ==========================
// Helpers
// ==========================
//

// redirectIndex sends the redirect-after-post response, carrying the
// notice or error for the next render as query parameters.
func redirectIndex(w http.ResponseWriter, r *http.Request, notice, errMsg string) {
	target := "/"
	q := url.Values{}
	if notice != "" {
		q.Set("notice", notice)
	}
	if errMsg != "" {
		q.Set("error", errMsg)
	}
	if enc := q.Encode(); enc != "" {
		target += "?" + enc
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *BoardHandler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("render template", "template", name, "path", r.URL.Path, "err", err)
	}
}

// serverError is the uncaught-storage-failure path: log and return the
// framework-default 500. No retry, no custom error page.
func (h *BoardHandler) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error(op, "method", r.Method, "path", r.URL.Path, "err", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
