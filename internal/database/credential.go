// internal/database/credential.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Sumit112234/sixteen-parchi/internal/auth"
)

// StoreRoomCredential hashes the room password and upserts it. The
// plaintext never reaches the database.
func StoreRoomCredential(ctx context.Context, roomID uuid.UUID, secret string, creatorAccountID uuid.UUID) error {
	hash, err := auth.HashSecret(secret)
	if err != nil {
		return fmt.Errorf("hash room secret: %w", err)
	}

	var creator interface{}
	if creatorAccountID != uuid.Nil {
		creator = creatorAccountID
	}
	q := `
	INSERT INTO room_credentials (room_id, secret_hash, creator_account_id)
	VALUES ($1, $2, $3)
	ON CONFLICT (room_id) DO UPDATE SET secret_hash = $2, creator_account_id = $3
	`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q, roomID, hash, creator)
		return e
	})
}

// ValidateRoomCredential checks a room password. Unknown rooms simply
// fail validation.
func ValidateRoomCredential(ctx context.Context, roomID uuid.UUID, secret string) (bool, error) {
	var hash string
	q := `SELECT secret_hash FROM room_credentials WHERE room_id=$1`
	err := DB.QueryRow(ctx, q, roomID).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return auth.VerifySecret(secret, hash)
}

// DeleteRoomCredential drops the password for a deleted room.
func DeleteRoomCredential(ctx context.Context, roomID uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, `DELETE FROM room_credentials WHERE room_id=$1`, roomID)
		return e
	})
}
