// internal/domain/activity/service.go
package activity

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Entry describes an event to record
type Entry struct {
	UserID     *uint
	SessionID  string
	Type       Type
	TargetID   *uint
	TargetType string
	Metadata   Metadata
}

// TrackRequest is the body of POST /activities
type TrackRequest struct {
	ActivityType Type     `json:"activityType" binding:"required"`
	TargetID     *uint    `json:"targetId"`
	TargetType   string   `json:"targetType" binding:"max=32"`
	Metadata     Metadata `json:"metadata"`
}

// Recorder appends activities. Failures are logged and swallowed.
type Recorder struct {
	repo Repository
	log  *logrus.Logger
	now  func() time.Time
}

// NewRecorder creates a new activity recorder
func NewRecorder(repo Repository, log *logrus.Logger) *Recorder {
	return &Recorder{repo: repo, log: log, now: time.Now}
}

// Record stores an entry
func (r *Recorder) Record(ctx context.Context, e Entry) {
	a := &Activity{
		UserID:       e.UserID,
		ActivityType: e.Type,
		TargetID:     e.TargetID,
		Metadata:     e.Metadata,
		CreatedAt:    r.now().UTC(),
	}
	if e.SessionID != "" {
		sid := e.SessionID
		a.SessionID = &sid
	}
	if e.TargetType != "" {
		tt := e.TargetType
		a.TargetType = &tt
	}

	if err := r.repo.CreateActivity(ctx, a); err != nil {
		r.log.WithError(err).WithField("activity_type", e.Type).Warn("failed to record activity")
	}
}

// RecordSearch stores a search event with its result count
func (r *Recorder) RecordSearch(ctx context.Context, userID *uint, sessionID, query string, results int) {
	r.Record(ctx, Entry{
		UserID:    userID,
		SessionID: sessionID,
		Type:      TypeSearch,
		Metadata: Metadata{
			MetaQuery:   query,
			MetaResults: strconv.Itoa(results),
		},
	})
}

// Track stores a client-submitted event
func (r *Recorder) Track(ctx context.Context, userID *uint, sessionID string, req *TrackRequest) bool {
	if !IsValidClientType(req.ActivityType) {
		return false
	}
	r.Record(ctx, Entry{
		UserID:     userID,
		SessionID:  sessionID,
		Type:       req.ActivityType,
		TargetID:   req.TargetID,
		TargetType: req.TargetType,
		Metadata:   req.Metadata,
	})
	return true
}
