package database

import (
	_ "embed"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tmasula/dnevnik/core"
)

//go:embed schema.sql
var schema string

func open(dbName string) (*sqlx.DB, error) {
	conf := core.Conf

	sslMode := "require"
	if conf.GetBool("dbDisableTLS") {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.GetString("dbEngine"),
		User:     url.UserPassword(conf.GetString("dbUser"), conf.GetString("dbPassword")),
		Host:     conf.GetString("dbHost") + ":" + conf.GetString("dbPort"),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return sqlx.Open(conf.GetString("dbEngine"), u.String())
}

func Open() (*sqlx.DB, error) {
	return open(core.Conf.GetString("dbName"))
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// CreateIfNotExist connects to the maintenance database and creates the
// application database when it is missing.
func CreateIfNotExist() error {
	db, err := open("postgres")
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	if err = ping(db); err != nil {
		return errors.Wrap(err, "pinging database")
	}

	dbName := core.Conf.GetString("dbName")
	var exists bool
	err = db.QueryRow(fmt.Sprintf("SELECT true FROM pg_database WHERE datname='%s'", dbName)).Scan(&exists)
	if err != nil && err.Error() != "sql: no rows in result set" {
		return errors.Wrap(err, "checking DB")
	}
	if !exists {
		if _, err = db.Exec(fmt.Sprintf("CREATE DATABASE %s", dbName)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// Migrate applies the embedded schema. Statements are idempotent.
func Migrate(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}
