// Import tool: loads the pipeline's JSON output into PostgreSQL so the server can run with
// RECORDS_SOURCE=postgres. The file comes from the first argument or RECORDS_FILE.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pagsusi/internal/anomaly"
	"pagsusi/internal/config"
	"pagsusi/internal/logger"
	"pagsusi/internal/migrate"
	"pagsusi/internal/store"
	"pagsusi/internal/utils"
)

func main() {
	config.LoadDotEnv()
	l := logger.Setup()

	path := os.Getenv("RECORDS_FILE")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		path = filepath.Join("data", "data.json")
	}
	prune := os.Getenv("IMPORT_PRUNE") == "true"

	ds, err := anomaly.LoadFile(path)
	if err != nil {
		l.Error("import_read_error", "path", path, "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := migrate.EnsureSchema(db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	n, err := store.AttachDB(db).UpsertRecords(ctx, ds.Records(), prune)
	if err != nil {
		l.Error("import_error", "err", err)
		os.Exit(1)
	}
	l.Info("import_done", "path", path, "records", n, "digest", ds.Digest(), "prune", prune)
	fmt.Println("imported", n)
}
