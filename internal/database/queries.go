package database

// Key-value queries backing persisted client state
const (
	GetValueSQL = `
		SELECT value FROM kv_store WHERE key = $1`

	UpsertValueSQL = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()`

	DeleteValueSQL = `
		DELETE FROM kv_store WHERE key = $1`
)

// Order archive queries
const (
	UpsertOrderSQL = `
		INSERT INTO orders (id, user_id, restaurant_id, status, total, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at`

	InsertOrderStatusLogSQL = `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4)`
)
