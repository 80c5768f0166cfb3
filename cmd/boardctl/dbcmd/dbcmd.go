package dbcmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crucial707/board/cmd/boardctl/output"
	"github.com/crucial707/board/internal/db"
	"github.com/crucial707/board/internal/repo"
	"github.com/spf13/cobra"
)

var dbPath string

// samplePosts are the fixed seed rows inserted by `boardctl seed`.
// Seeded posts carry no password, so they cannot be edited or deleted
// through the password-gated routes (admin clear still removes them).
var samplePosts = []struct {
	Nickname string
	Content  string
}{
	{"hong", "Hello! This is the first post."},
	{"chulsoo", "Nice to meet you. The board turned out great!"},
	{"younghee", "A bulletin board with an embedded database. Love it!"},
	{"minsoo", "A comment feature would be a nice addition."},
	{"jiyoung", "Clean design and easy to use!"},
}

// ==========================
// CLI Command Init
// ==========================

// Init registers the database maintenance commands on the root command.
func Init(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath(), "path to the board database file")

	rootCmd.AddCommand(
		initCmd(),
		seedCmd(),
		listCmd(),
		clearCmd(),
		infoCmd(),
	)
}

func defaultDBPath() string {
	if v := os.Getenv("BOARD_DB_PATH"); v != "" {
		return v
	}
	return "board.db"
}

// open connects to the embedded database file. The CLI always talks to
// the file backend; do not run it against a file an active web process
// is serving without external coordination.
func open() (*db.Manager, error) {
	return db.OpenBackend(db.SQLite(dbPath), 1, 1)
}

// ==========================
// INIT
// ==========================

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the posts table",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := open()
			if err != nil {
				return err
			}
			defer manager.Close()

			if err := manager.InitSchema(context.Background()); err != nil {
				return err
			}
			fmt.Printf("Database %q initialized.\n", dbPath)
			return nil
		},
	}
}

// ==========================
// SEED
// ==========================

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := open()
			if err != nil {
				return err
			}
			defer manager.Close()

			ctx := context.Background()
			if err := manager.InitSchema(ctx); err != nil {
				return err
			}

			posts := repo.NewPostRepo(manager.Pool(), manager.Backend())
			for _, s := range samplePosts {
				if err := posts.Create(ctx, s.Nickname, s.Content, ""); err != nil {
					return err
				}
			}
			fmt.Printf("Added %d sample posts.\n", len(samplePosts))
			return nil
		},
	}
}

// ==========================
// LIST
// ==========================

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print all posts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := open()
			if err != nil {
				return err
			}
			defer manager.Close()

			posts, err := repo.NewPostRepo(manager.Pool(), manager.Backend()).ListAll(context.Background())
			if err != nil {
				return err
			}
			if len(posts) == 0 {
				fmt.Println("No posts.")
				return nil
			}

			rows := make([][]interface{}, 0, len(posts))
			for _, p := range posts {
				rows = append(rows, []interface{}{p.ID, p.Nickname, p.Content, p.CreatedAt.Display()})
			}
			fmt.Printf("%d posts total\n", len(posts))
			output.RenderTable([]string{"ID", "Nickname", "Content", "Created"}, rows)
			return nil
		},
	}
}

// ==========================
// CLEAR
// ==========================

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all posts (asks for confirmation)",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := open()
			if err != nil {
				return err
			}
			defer manager.Close()

			ctx := context.Background()
			posts := repo.NewPostRepo(manager.Pool(), manager.Backend())

			count, err := posts.Count(ctx)
			if err != nil {
				return err
			}
			if count == 0 {
				fmt.Println("No posts to delete.")
				return nil
			}

			fmt.Printf("Delete all %d posts? (y/N): ", count)
			reader := bufio.NewReader(cmd.InOrStdin())
			answer, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(answer)) != "y" {
				fmt.Println("Canceled.")
				return nil
			}

			if err := posts.DeleteAll(ctx); err != nil {
				return err
			}
			fmt.Println("All posts deleted.")
			return nil
		},
	}
}

// ==========================
// INFO
// ==========================

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show database file path, size and row count",
		RunE: func(cmd *cobra.Command, args []string) error {
			stat, err := os.Stat(dbPath)
			if os.IsNotExist(err) {
				fmt.Printf("Database file %q does not exist.\n", dbPath)
				return nil
			}
			if err != nil {
				return err
			}

			abs, err := filepath.Abs(dbPath)
			if err != nil {
				abs = dbPath
			}

			manager, err := open()
			if err != nil {
				return err
			}
			defer manager.Close()

			count, err := repo.NewPostRepo(manager.Pool(), manager.Backend()).Count(context.Background())
			if err != nil {
				return err
			}

			fmt.Printf("Database file: %s\n", abs)
			fmt.Printf("File size: %d bytes\n", stat.Size())
			fmt.Printf("Total posts: %d\n", count)
			return nil
		},
	}
}
