package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/actionsum/worktrack/internal/database"
)

var (
	historyLimit int
	clearYes     bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent screenshot uploads and worker failures",
	Args:  cobra.NoArgs,
	RunE:  showHistory,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all upload and failure history",
	Args:  cobra.NoArgs,
	RunE:  clearHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show")
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(historyCmd, clearCmd)
}

func openRepository() (*database.Repository, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return database.NewRepository(db), func() { db.Close() }, nil
}

func showHistory(cmd *cobra.Command, args []string) error {
	if historyLimit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}

	repo, closeDB, err := openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	uploads, err := repo.RecentUploads(historyLimit)
	if err != nil {
		return err
	}
	failures, err := repo.RecentFailures(historyLimit)
	if err != nil {
		return err
	}
	today, err := repo.CountUploadsSince(time.Now().Add(-24 * time.Hour))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Uploads (last 24h: %d)\n", today)
	fmt.Fprintln(w, "TIME\tFILE\tSIZE\tSESSION")
	for _, u := range uploads {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", u.UploadedAt.Local().Format(time.DateTime), u.Filename, u.SizeBytes, u.SessionID)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Failures")
	fmt.Fprintln(w, "TIME\tKIND\tERROR\tSESSION")
	for _, f := range failures {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Timestamp.Local().Format(time.DateTime), f.Kind, f.ErrorMsg, f.SessionID)
	}
	return w.Flush()
}

func clearHistory(cmd *cobra.Command, args []string) error {
	if !clearYes {
		fmt.Print("This will delete all upload and failure history. Are you sure? (yes/no): ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "yes" && answer != "y" {
			fmt.Println("Operation cancelled")
			return nil
		}
	}

	repo, closeDB, err := openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := repo.Clear(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Println("History cleared")
	return nil
}
