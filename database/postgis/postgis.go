// Package postgis exports semantic map elements into PostGIS tables.
package postgis

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	pq "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/omniscale/tubemap/log"
)

type SQLError struct {
	query         string
	originalError error
}

func (e *SQLError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s", e.originalError.Error(), e.query)
}

func (e *SQLError) Cause() error { return e.originalError }

type SQLInsertError struct {
	SQLError
	data interface{}
}

func (e *SQLInsertError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s (%+v)", e.originalError.Error(), e.query, e.data)
}

const (
	defaultSchema = "public"
	defaultPrefix = "tubemap_"
)

// Params are the parsed connection parameters. Schema and Prefix are
// removed from the DSN passed to lib/pq.
type Params struct {
	DSN    string
	Schema string
	Prefix string
}

// ParseConnection parses key=value connection strings and
// postgres:// or postgis:// URLs. schema=... and prefix=... select the
// target schema and the table name prefix.
func ParseConnection(conn string) (Params, error) {
	if strings.HasPrefix(conn, "postgis://") {
		conn = "postgres://" + strings.TrimPrefix(conn, "postgis://")
	}
	if strings.HasPrefix(conn, "postgres://") || strings.HasPrefix(conn, "postgresql://") {
		var err error
		conn, err = pq.ParseURL(conn)
		if err != nil {
			return Params{}, errors.Wrap(err, "parsing connection url")
		}
	}

	p := Params{Schema: defaultSchema, Prefix: defaultPrefix}
	var parts []string
	for _, part := range strings.Fields(conn) {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return Params{}, errors.Errorf("invalid connection parameter %q", part)
		}
		v = strings.Trim(v, "'")
		switch k {
		case "schema":
			p.Schema = v
		case "prefix":
			p.Prefix = v
		default:
			parts = append(parts, part)
		}
	}
	if p.Prefix != "" && !strings.HasSuffix(p.Prefix, "_") {
		p.Prefix += "_"
	}
	dsn := strings.Join(parts, " ")
	if !strings.Contains(dsn, "sslmode=") {
		dsn += " sslmode=disable"
	}
	p.DSN = strings.TrimSpace(dsn)
	return p, nil
}

type PostGIS struct {
	Db     *sql.DB
	Schema string
	Prefix string
	Tables map[string]*TableSpec
}

func Open(conn string) (*PostGIS, error) {
	params, err := ParseConnection(conn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("postgres", params.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "connecting to PostGIS")
	}
	return &PostGIS{
		Db:     db,
		Schema: params.Schema,
		Prefix: params.Prefix,
		Tables: NewTableSpecs(params.Schema, params.Prefix),
	}, nil
}

func (pg *PostGIS) Close() error {
	return pg.Db.Close()
}

// Import replaces all export tables with rows. Everything runs in a
// single transaction so readers never see partial tables. It returns the
// number of rows per table.
func (pg *PostGIS) Import(rows *Rows) (map[string]int, error) {
	tx, err := pg.Db.Begin()
	if err != nil {
		return nil, err
	}
	defer rollbackIfTx(&tx)

	if err := createSchema(tx, pg.Schema); err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, name := range sortedTableNames(pg.Tables) {
		spec := pg.Tables[name]
		step := log.Step(fmt.Sprintf("Importing %s", spec.FullName))
		n, err := importTable(tx, spec, rows.Tables[name])
		step()
		if err != nil {
			return nil, err
		}
		counts[name] = n
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	tx = nil
	return counts, nil
}

func importTable(tx *sql.Tx, spec *TableSpec, rows [][]interface{}) (int, error) {
	for _, query := range []string{spec.DropTableSQL(), spec.CreateTableSQL()} {
		if _, err := tx.Exec(query); err != nil {
			return 0, &SQLError{query, err}
		}
	}

	copySQL := spec.CopySQL()
	stmt, err := tx.Prepare(copySQL)
	if err != nil {
		return 0, &SQLError{copySQL, err}
	}
	defer stmt.Close()
	for _, row := range rows {
		if _, err := stmt.Exec(row...); err != nil {
			return 0, &SQLInsertError{SQLError{copySQL, err}, row}
		}
	}
	// flush COPY buffer
	if _, err := stmt.Exec(); err != nil {
		return 0, &SQLError{copySQL, err}
	}

	indexSQL := spec.IndexSQL()
	if _, err := tx.Exec(indexSQL); err != nil {
		return 0, &SQLError{indexSQL, err}
	}
	return len(rows), nil
}

func createSchema(tx *sql.Tx, schema string) error {
	if schema == "public" {
		return nil
	}
	query := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pq.QuoteIdentifier(schema))
	if _, err := tx.Exec(query); err != nil {
		return &SQLError{query, err}
	}
	return nil
}

func rollbackIfTx(tx **sql.Tx) {
	if *tx != nil {
		if err := (*tx).Rollback(); err != nil {
			log.Printf("[error] rollback failed: %s", err)
		}
	}
}

func sortedTableNames(tables map[string]*TableSpec) []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
