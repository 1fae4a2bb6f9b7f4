// Package postgresseed loads the startup seed of the room inventory from a PostgreSQL table.
//
// The table needs the columns room_id, room_type and available_units:
//
//	CREATE TABLE rooms (
//	    room_id         INTEGER PRIMARY KEY,
//	    room_type       TEXT,
//	    available_units INTEGER NOT NULL
//	);
//
// A Loader can be built on a pgx pool, a database/sql DB or a sqlx DB.
package postgresseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/room-inventory-go/inventory"
	"github.com/AntonStoeckl/room-inventory-go/roomseed/postgresseed/internal/adapters"
)

const (
	defaultTableName        = "rooms"
	dialectPostgres         = "postgres"
	colRoomID               = "room_id"
	colRoomType             = "room_type"
	colAvailableUnits       = "available_units"
	logMsgBuildQueryFailed  = "failed to build room seed query"
	logMsgDBQueryFailed     = "room seed query execution failed"
	logMsgScanRowFailed     = "failed to scan room seed row"
	logMsgCloseRowsFailed   = "failed to close database rows"
	logMsgInvalidSeedRow    = "room seed row has negative units"
	logMsgSeedLoaded        = "room seed loaded"
	logMsgSQLExecuted       = "executed sql for room seed"
	logAttrError            = "error"
	logAttrQuery            = "query"
	logAttrRoomID           = "room_id"
	logAttrRoomCount        = "room_count"
	logAttrDurationMS       = "duration_ms"
	millisecondsPerDuration = float64(time.Millisecond)
)

var (
	// ErrNilDatabaseConnection is returned when a constructor receives a nil connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableName is returned when WithTableName receives an empty name.
	ErrEmptyTableName = errors.New("room seed table name must not be empty")

	// ErrBuildingQueryFailed is returned when the select query cannot be built.
	ErrBuildingQueryFailed = errors.New("building room seed query failed")

	// ErrQueryingSeedFailed is returned when the select query fails in the database.
	ErrQueryingSeedFailed = errors.New("querying room seed failed")

	// ErrScanningRowFailed is returned when a result row cannot be read.
	ErrScanningRowFailed = errors.New("scanning room seed row failed")
)

// Logger interface for query logging and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Loader reads seed entries from a rooms table.
type Loader struct {
	db        adapters.DBAdapter
	tableName string
	logger    Logger
}

// Option defines a functional option for configuring Loader.
type Option func(*Loader) error

// WithTableName sets the table the seed is read from. The default is "rooms".
func WithTableName(tableName string) Option {
	return func(l *Loader) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		l.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the Loader.
// Debug level receives the executed SQL, Info level the number of loaded rooms.
func WithLogger(logger Logger) Option {
	return func(l *Loader) error {
		l.logger = logger
		return nil
	}
}

// NewLoaderFromPGXPool creates a new Loader using a pgx Pool with optional configuration.
func NewLoaderFromPGXPool(db *pgxpool.Pool, options ...Option) (Loader, error) {
	if db == nil {
		return Loader{}, ErrNilDatabaseConnection
	}

	return newLoader(adapters.NewPGXAdapter(db), options...)
}

// NewLoaderFromSQLDB creates a new Loader using a sql.DB with optional configuration.
func NewLoaderFromSQLDB(db *sql.DB, options ...Option) (Loader, error) {
	if db == nil {
		return Loader{}, ErrNilDatabaseConnection
	}

	return newLoader(adapters.NewSQLAdapter(db), options...)
}

// NewLoaderFromSQLX creates a new Loader using a sqlx.DB with optional configuration.
func NewLoaderFromSQLX(db *sqlx.DB, options ...Option) (Loader, error) {
	if db == nil {
		return Loader{}, ErrNilDatabaseConnection
	}

	return newLoader(adapters.NewSQLXAdapter(db), options...)
}

func newLoader(db adapters.DBAdapter, options ...Option) (Loader, error) {
	l := Loader{
		db:        db,
		tableName: defaultTableName,
	}

	for _, option := range options {
		if err := option(&l); err != nil {
			return Loader{}, err
		}
	}

	return l, nil
}

// Load reads all rows of the seed table ordered by room id.
// A NULL room type becomes the empty string. Rows with negative units are rejected
// with inventory.ErrNegativeUnits.
func (l Loader) Load(ctx context.Context) ([]inventory.SeedEntry, error) {
	sqlQuery, buildErr := l.buildSelectQuery()
	if buildErr != nil {
		l.logError(logMsgBuildQueryFailed, logAttrError, buildErr.Error())
		return nil, errors.Join(ErrBuildingQueryFailed, buildErr)
	}

	start := time.Now()
	rows, queryErr := l.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	l.logDebug(logMsgSQLExecuted, logAttrQuery, sqlQuery, logAttrDurationMS, toMilliseconds(duration))

	if queryErr != nil {
		l.logError(logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		return nil, errors.Join(ErrQueryingSeedFailed, queryErr)
	}
	defer l.closeRows(rows)

	seed, scanErr := l.scanRows(rows)
	if scanErr != nil {
		return nil, scanErr
	}

	l.logInfo(logMsgSeedLoaded, logAttrRoomCount, len(seed), logAttrDurationMS, toMilliseconds(duration))

	return seed, nil
}

func (l Loader) buildSelectQuery() (string, error) {
	sqlQuery, _, err := goqu.Dialect(dialectPostgres).
		From(l.tableName).
		Select(
			goqu.C(colRoomID),
			goqu.COALESCE(goqu.C(colRoomType), "").As(colRoomType),
			goqu.C(colAvailableUnits),
		).
		Order(goqu.C(colRoomID).Asc()).
		ToSQL()

	return sqlQuery, err
}

func (l Loader) scanRows(rows adapters.DBRows) ([]inventory.SeedEntry, error) {
	seed := make([]inventory.SeedEntry, 0)

	for rows.Next() {
		var (
			roomID   int
			roomType string
			units    int
		)

		if err := rows.Scan(&roomID, &roomType, &units); err != nil {
			l.logError(logMsgScanRowFailed, logAttrError, err.Error())
			return nil, errors.Join(ErrScanningRowFailed, err)
		}

		if units < 0 {
			l.logError(logMsgInvalidSeedRow, logAttrRoomID, roomID)
			return nil, fmt.Errorf("%w: room %d has %d units", inventory.ErrNegativeUnits, roomID, units)
		}

		seed = append(seed, inventory.SeedEntry{
			RoomID: inventory.RoomID(roomID),
			Type:   roomType,
			Units:  units,
		})
	}

	if err := rows.Err(); err != nil {
		l.logError(logMsgScanRowFailed, logAttrError, err.Error())
		return nil, errors.Join(ErrScanningRowFailed, err)
	}

	return seed, nil
}

func (l Loader) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		l.logWarn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

func (l Loader) logDebug(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}

func (l Loader) logInfo(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Info(msg, args...)
	}
}

func (l Loader) logWarn(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Warn(msg, args...)
	}
}

func (l Loader) logError(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Error(msg, args...)
	}
}

func toMilliseconds(d time.Duration) float64 {
	return float64(d) / millisecondsPerDuration
}
