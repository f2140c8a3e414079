package database

import "context"

// schemaStatements declares tables and the unique indexes that back every
// uniqueness invariant in the system. The service layer's duplicate checks
// are a fast path for friendlier errors; these indexes are what actually
// closes the check-then-insert race between concurrent writers.
var schemaStatements = []string{
	`DEFINE TABLE IF NOT EXISTS user SCHEMALESS`,
	`DEFINE INDEX IF NOT EXISTS user_username ON TABLE user COLUMNS username UNIQUE`,
	`DEFINE INDEX IF NOT EXISTS user_email ON TABLE user COLUMNS email UNIQUE`,

	`DEFINE TABLE IF NOT EXISTS book SCHEMALESS`,
	`DEFINE INDEX IF NOT EXISTS book_isbn_10 ON TABLE book COLUMNS isbn_10 UNIQUE`,
	`DEFINE INDEX IF NOT EXISTS book_isbn_13 ON TABLE book COLUMNS isbn_13 UNIQUE`,

	`DEFINE TABLE IF NOT EXISTS library SCHEMALESS`,
}

// DefineSchema applies the schema statements. Safe to run on every startup.
func DefineSchema(ctx context.Context, db Database) error {
	for _, stmt := range schemaStatements {
		if err := db.Execute(ctx, stmt, nil); err != nil {
			return err
		}
	}
	return nil
}
