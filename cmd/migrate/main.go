// Package main applies database migrations.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	var (
		direction string
		steps     int
		dsn       string
		path      string
	)

	flag.StringVar(&direction, "direction", "up", "migration direction: up|down")
	flag.IntVar(&steps, "steps", 0, "number of migrations (0 = all for up, 1 for down)")
	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: DATABASE_URL)")
	flag.StringVar(&path, "path", "file://migrations", "migration source")
	flag.Parse()

	_ = godotenv.Load()
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		fail("DATABASE_URL (or -dsn) is required")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		fail("open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		fail("ping database: %v", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		fail("create migrate driver: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance(path, "postgres", driver)
	if err != nil {
		fail("create migrate instance: %v", err)
	}

	switch direction {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps <= 0 {
			steps = 1
		}
		err = m.Steps(-steps)
	default:
		fail("unknown direction %q (want up or down)", direction)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		fail("migrate %s failed: %v", direction, err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		fail("read version: %v", verr)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("no new migrations to apply")
	}
	fmt.Printf("migrate %s ok: version=%d dirty=%v\n", direction, version, dirty)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
