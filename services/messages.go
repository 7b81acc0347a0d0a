package services

import (
	"context"
	"encoding/json"
	"fmt"

	"food-truck/db"
)

const outboundRole = "system/outbound"

// SaveOutboundMessage persists an outbound notification (e.g. a submitted order).
func SaveOutboundMessage(ctx context.Context, chatID int64, content string, meta map[string]any) error {
	metaJSON := "{}"
	if len(meta) > 0 {
		b, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshal meta: %w", err)
		}
		metaJSON = string(b)
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO messages (chat_id, role, content, meta)
		VALUES ($1, $2, $3, $4::jsonb)`,
		chatID, outboundRole, content, metaJSON,
	)
	return err
}
