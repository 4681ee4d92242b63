package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"storeops/internal/core/id"
	"storeops/internal/domain/stocktake"
)

const auditTable = "stocktake_audit"

// Compression markers stored alongside the snapshot.
const (
	compressionNone = "none"
	compressionZstd = "zstd"
)

// Snapshots above this size are stored zstd-compressed. Checks over large
// catalogs carry every item in the snapshot, so this triggers in practice.
const compressThreshold = 10 * 1024

var (
	_ stocktake.Auditor         = (*AuditTrail)(nil)
	_ stocktake.HistoryProvider = (*AuditTrail)(nil)
)

// AuditTrail records every lifecycle transition with a full JSON snapshot
// of the check at that moment. Append-only; nothing in the application
// reads it on the hot path.
type AuditTrail struct {
	txm     *TxManager
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewAuditTrail creates an audit trail over the transaction manager.
func NewAuditTrail(txm *TxManager) (*AuditTrail, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditTrail{txm: txm, encoder: encoder, decoder: decoder}, nil
}

// Record writes one audit row for the transition.
func (t *AuditTrail) Record(ctx context.Context, action stocktake.AuditAction, chk *stocktake.Check) error {
	snapshot, err := json.Marshal(chk)
	if err != nil {
		return fmt.Errorf("marshal check snapshot: %w", err)
	}

	algo := compressionNone
	var compressed []byte
	if len(snapshot) > compressThreshold {
		compressed = t.encoder.EncodeAll(snapshot, nil)
		snapshot = nil
		algo = compressionZstd
	}

	_, err = t.txm.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO `+auditTable+` (
			id, check_id, code, action, status, actor,
			snapshot, snapshot_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id.New(), chk.ID, chk.Code, action, chk.Status, actorFor(action, chk),
		snapshot, compressed, algo, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit row: %w", err)
	}
	return nil
}

// History returns the audit rows of one check, newest first, snapshots
// decompressed.
func (t *AuditTrail) History(ctx context.Context, checkID id.ID, limit int) ([]stocktake.HistoryEntry, error) {
	rows, err := t.txm.GetQuerier(ctx).Query(ctx, `
		SELECT id, check_id, code, action, status, actor,
		       snapshot, snapshot_compressed, compression_algo, created_at
		FROM `+auditTable+`
		WHERE check_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		checkID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}
	defer rows.Close()

	var entries []stocktake.HistoryEntry
	for rows.Next() {
		var (
			e          stocktake.HistoryEntry
			compressed []byte
			algo       string
		)
		err := rows.Scan(
			&e.ID, &e.CheckID, &e.Code, &e.Action, &e.Status, &e.Actor,
			&e.Snapshot, &compressed, &algo, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}

		if algo == compressionZstd && len(compressed) > 0 {
			decoded, err := t.decoder.DecodeAll(compressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress snapshot: %w", err)
			}
			e.Snapshot = decoded
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// actorFor picks the user responsible for the transition.
func actorFor(action stocktake.AuditAction, chk *stocktake.Check) string {
	switch action {
	case stocktake.AuditApprove:
		if chk.ApprovedBy != nil {
			return *chk.ApprovedBy
		}
	case stocktake.AuditReject:
		if chk.RejectedBy != nil {
			return *chk.RejectedBy
		}
	}
	return chk.CreatedBy
}
