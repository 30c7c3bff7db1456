// Package migration holds the database schema and applies it with golang-migrate.
package migration

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/go-petr/cheque-desk/pkg/dbpkg"
)

//go:embed *.sql
var files embed.FS

// Up migrates the database all the way up. It returns false when there was nothing to apply.
//
// It opens its own connection because closing the migrate instance closes the database handle.
func Up(driverName, source string) (bool, error) {
	db, err := dbpkg.Setup(driverName, source)
	if err != nil {
		return false, fmt.Errorf("cannot connect to database: %w", err)
	}

	src, err := iofs.New(files, ".")
	if err != nil {
		_ = db.Close()
		return false, fmt.Errorf("cannot open migration files: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		_ = db.Close()
		return false, fmt.Errorf("cannot create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = db.Close()
		return false, fmt.Errorf("cannot create migrate instance: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("cannot apply migrations: %w", err)
	}

	return true, nil
}
