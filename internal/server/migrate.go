package server

import (
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate applies database migrations from the given directory.
// dir example: file://migrations
func Migrate(dir string, dsn string, direction string, steps int) error {
	if dir == "" {
		dir = "file://migrations"
	}
	m, err := migrate.New(dir, dsn)
	if err != nil {
		return err
	}
	switch direction {
	case "up":
		if steps > 0 {
			return noChangeOK(m.Steps(steps))
		}
		return noChangeOK(m.Up())
	case "down":
		if steps > 0 {
			return noChangeOK(m.Steps(-steps))
		}
		return noChangeOK(m.Down())
	default:
		return fmt.Errorf("unknown direction: %s", direction)
	}
}

func noChangeOK(err error) error {
	if err == migrate.ErrNoChange {
		return nil
	}
	return err
}
