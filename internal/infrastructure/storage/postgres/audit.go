package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	appcontext "swiftpos/internal/core/context"
	"swiftpos/internal/core/entity"
	"swiftpos/internal/core/id"
)

// AuditAction names the audited operation.
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionCommit AuditAction = "commit"
)

// CompressionAlgo marks how the Changes payload is stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// Change payloads above this size are stored zstd-compressed.
const auditCompressThreshold = 10 * 1024

// AuditEntry is one row of the sys_audit trail.
type AuditEntry struct {
	ID                id.ID             `db:"id" json:"id"`
	EntityType        string            `db:"entity_type" json:"entityType"`
	EntityID          id.ID             `db:"entity_id" json:"entityId"`
	Action            AuditAction       `db:"action" json:"action"`
	UserID            string            `db:"user_id" json:"userId,omitempty"`
	Username          string            `db:"username" json:"username,omitempty"`
	Changes           json.RawMessage   `db:"changes" json:"changes,omitempty"`
	ChangesCompressed []byte            `db:"changes_compressed" json:"-"`
	CompressionAlgo   CompressionAlgo   `db:"compression_algo" json:"-"`
	Metadata          entity.Attributes `db:"metadata" json:"metadata,omitempty"`
	CreatedAt         time.Time         `db:"created_at" json:"createdAt"`
}

// AuditService records who changed what. Sale commits, price slashes and
// stock adjustments all leave entries here.
type AuditService struct {
	txManager *TxManager
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
}

func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditService{
		txManager: txManager,
		encoder:   encoder,
		decoder:   decoder,
	}, nil
}

// Log writes one audit entry, filling actor, id and timestamp from the
// context when the caller left them blank.
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) error {
	s.stamp(ctx, &entry)

	query, args, err := squirrel.Insert("sys_audit").
		SetMap(map[string]any{
			"id":                 entry.ID,
			"entity_type":        entry.EntityType,
			"entity_id":          entry.EntityID,
			"action":             entry.Action,
			"user_id":            entry.UserID,
			"username":           entry.Username,
			"changes":            entry.Changes,
			"changes_compressed": entry.ChangesCompressed,
			"compression_algo":   entry.CompressionAlgo,
			"metadata":           entry.Metadata,
			"created_at":         entry.CreatedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}

	_, err = s.txManager.GetQuerier(ctx).Exec(ctx, query, args...)
	return err
}

func (s *AuditService) stamp(ctx context.Context, entry *AuditEntry) {
	if user := appcontext.GetUser(ctx); user != nil {
		if entry.UserID == "" {
			entry.UserID = user.UserID
		}
		if entry.Username == "" {
			entry.Username = user.Username
		}
	}
	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	entry.CompressionAlgo = CompressionNone
	if len(entry.Changes) > auditCompressThreshold {
		entry.ChangesCompressed = s.encoder.EncodeAll(entry.Changes, nil)
		entry.Changes = nil
		entry.CompressionAlgo = CompressionZstd
	}
}

// LogChange marshals a change map and records it under the given action.
func (s *AuditService) LogChange(
	ctx context.Context,
	entityType string,
	entityID id.ID,
	action AuditAction,
	changes map[string]any,
) error {
	changesJSON, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}

	return s.Log(ctx, AuditEntry{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Changes:    changesJSON,
	})
}

// GetEntityHistory returns the newest entries for one entity, change
// payloads decompressed.
func (s *AuditService) GetEntityHistory(
	ctx context.Context,
	entityType string,
	entityID id.ID,
	limit int,
) ([]AuditEntry, error) {
	query := `
		SELECT id, entity_type, entity_id, action, user_id, username,
		       changes, changes_compressed, compression_algo, metadata,
		       created_at
		FROM sys_audit
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	var entries []AuditEntry
	err := pgxscan.Select(ctx, s.txManager.GetQuerier(ctx), &entries,
		query, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	for i := range entries {
		e := &entries[i]
		if e.CompressionAlgo != CompressionZstd || len(e.ChangesCompressed) == 0 {
			continue
		}
		raw, err := s.decoder.DecodeAll(e.ChangesCompressed, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress changes: %w", err)
		}
		e.Changes = raw
		e.ChangesCompressed = nil
	}

	return entries, nil
}

// Diff reports the fields that differ between two entity snapshots as
// {"old": ..., "new": ...} pairs, including added and removed keys.
func Diff(oldState, newState map[string]any) map[string]any {
	changes := make(map[string]any)

	for key, newVal := range newState {
		oldVal, exists := oldState[key]
		if !exists || !equal(oldVal, newVal) {
			var prev any
			if exists {
				prev = oldVal
			}
			changes[key] = map[string]any{"old": prev, "new": newVal}
		}
	}

	for key, oldVal := range oldState {
		if _, exists := newState[key]; !exists {
			changes[key] = map[string]any{"old": oldVal, "new": nil}
		}
	}

	return changes
}

func equal(a, b any) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}
