package database

import (
	"context"
	"fmt"
	"strings"
)

// AtomicBatch accumulates statements that must succeed or fail together. At
// Execute time the statements are wrapped in BEGIN TRANSACTION / COMMIT
// TRANSACTION and sent as one query. Variables are namespaced per statement
// so two statements may both bind $id without colliding.
//
//	batch := database.NewAtomicBatch()
//	batch.Add("CREATE type::record($id) CONTENT $data", vars1)
//	batch.Add("CREATE type::record($id) CONTENT $data", vars2)
//	err := batch.Execute(ctx, db)
//
// Note there is no isolation between Add calls: everything executes at once.
type AtomicBatch struct {
	statements []string
	vars       map[string]interface{}
	counter    int
}

// NewAtomicBatch creates an empty batch
func NewAtomicBatch() *AtomicBatch {
	return &AtomicBatch{vars: make(map[string]interface{})}
}

// Add appends a statement, rewriting its variable names into a unique
// namespace.
func (b *AtomicBatch) Add(query string, vars map[string]interface{}) {
	b.counter++
	for name, value := range vars {
		namespaced := fmt.Sprintf("v%d_%s", b.counter, name)
		query = strings.ReplaceAll(query, "$"+name, "$"+namespaced)
		b.vars[namespaced] = value
	}
	b.statements = append(b.statements, query)
}

// Len returns the number of accumulated statements.
func (b *AtomicBatch) Len() int {
	return len(b.statements)
}

// Execute runs the batch atomically. An empty batch is a no-op.
func (b *AtomicBatch) Execute(ctx context.Context, db Database) error {
	if len(b.statements) == 0 {
		return nil
	}
	query := "BEGIN TRANSACTION;\n" + strings.Join(b.statements, ";\n") + ";\nCOMMIT TRANSACTION;"
	return db.Execute(ctx, query, b.vars)
}
