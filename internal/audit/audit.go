// Package audit records who created, deleted or signed in to what. Events are
// written to Postgres off the request path.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"client-vault/internal/auth"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionDelete Action = "delete"
	ActionLogin  Action = "login"
)

type ResourceType string

const (
	ResourceAsset ResourceType = "asset"
	ResourceUser  ResourceType = "user"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusDenied  Status = "denied"
)

const (
	defaultWriteTimeout = 2 * time.Second

	insertEventSQL = `
		INSERT INTO audit_events (
			id, actor_id, action, resource_type, resource_id, status,
			ip_address, user_agent, request_id, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
)

type Event struct {
	ID           uuid.UUID
	ActorID      *uuid.UUID
	Action       Action
	ResourceType ResourceType
	ResourceID   string
	Status       Status
	IPAddress    string
	UserAgent    string
	RequestID    string
	Metadata     map[string]any
	CreatedAt    time.Time
}

// Execer is satisfied by *pgxpool.Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Logger writes audit events. A nil *Logger discards everything.
type Logger struct {
	db      Execer
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewLogger(db Execer) *Logger {
	return &Logger{db: db, timeout: defaultWriteTimeout}
}

func (l *Logger) Log(ctx context.Context, event *Event) error {
	if l == nil {
		return nil
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	var metadata []byte
	if event.Metadata != nil {
		raw, err := json.Marshal(event.Metadata)
		if err != nil {
			return err
		}
		metadata = raw
	}

	_, err := l.db.Exec(ctx, insertEventSQL,
		event.ID,
		event.ActorID,
		string(event.Action),
		string(event.ResourceType),
		event.ResourceID,
		string(event.Status),
		event.IPAddress,
		event.UserAgent,
		event.RequestID,
		metadata,
		event.CreatedAt,
	)
	return err
}

// Record captures the request's actor and origin and writes the event in
// the background. Failures are logged, never returned.
func (l *Logger) Record(c echo.Context, action Action, resourceType ResourceType, resourceID string, status Status, metadata map[string]any) {
	if l == nil {
		return
	}

	event := &Event{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Status:       status,
		IPAddress:    c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
		RequestID:    c.Response().Header().Get(echo.HeaderXRequestID),
		Metadata:     metadata,
	}
	if uid, ok := c.Get(auth.ContextKeyUserID).(uuid.UUID); ok {
		event.ActorID = &uid
	}

	logger := c.Logger()
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()
		if err := l.Log(ctx, event); err != nil {
			logger.Errorf("audit log failed: %v", err)
		}
	}()
}

// Wait blocks until background writes have finished.
func (l *Logger) Wait() {
	if l == nil {
		return
	}
	l.wg.Wait()
}
