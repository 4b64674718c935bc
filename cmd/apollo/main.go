// Command apollo inspects and maintains an Apollo Documents store kept in
// a SQLite file.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/eternalheli/apollodocs/internal/config"
	"github.com/eternalheli/apollodocs/internal/store"
	"github.com/eternalheli/apollodocs/pkg/logger"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `usage: apollo [-db path] [-log level] <command> [args]

commands:
  list                      live documents, newest first
  create [title]            create a document seeded with the welcome page
  rename <id> <title>       rename a document
  cat <id>                  print stored content
  stats <id>                word and reading-time statistics
  archive <id>              move a document to the trash
  trash                     trashed documents with time remaining
  restore <id>              restore a trashed document
  delete <id>               permanently delete a trashed document
  purge                     drop expired trash now
  odt <id> <file>           write the document as OpenDocument text
  json <id> <file>          write the document as a JSON export
  backup [file]             dump every key (stdout when no file)
  import <file>             load a backup made with "backup"
`)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	dbPath := flag.String("db", cfg.DBPath, "SQLite database file")
	level := flag.String("log", cfg.LogLevel, "log level (debug, info, warn, error)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	logger.Init(*level)
	defer logger.Log.Sync()

	db, err := store.NewSQLiteStoreWithDSN(*dbPath)
	if err != nil {
		logger.Log.Fatal("open database", zap.String("path", *dbPath), zap.Error(err))
	}
	defer db.Close()

	app := newApp(db, logger.Log, os.Stdout)
	if err := app.run(flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "apollo:", err)
		db.Close()
		os.Exit(1)
	}
}
