package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type Writer struct {
	DB  *sql.DB
	Now func() time.Time
}

type Details map[string]any

// Append writes one system_logs row inside the caller's transaction.
func (w Writer) Append(ctx context.Context, tx *sql.Tx, action, userID, entityType, entityID string, details Details) error {
	if w.Now == nil {
		w.Now = time.Now
	}
	ts := w.Now().UTC().Format(time.RFC3339)
	if details == nil {
		details = Details{}
	}
	data, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO system_logs(ts,action,user_id,entity_type,entity_id,details_json) VALUES (?,?,?,?,?,?)`,
		ts, action, nullable(userID), entityType, nullable(entityID), string(data))
	return err
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
