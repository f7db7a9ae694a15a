// Package service provides business logic for the NeighborJob marketplace.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neighborjob/marketplace/internal/advisor"
	"github.com/neighborjob/marketplace/internal/geo"
	"github.com/neighborjob/marketplace/internal/model"
	"github.com/neighborjob/marketplace/internal/query"
	"github.com/neighborjob/marketplace/internal/store"
	"github.com/neighborjob/marketplace/pkg/logger"
	"github.com/neighborjob/marketplace/pkg/metrics"
)

var (
	// ErrInvalidJob is returned when a job draft fails validation.
	ErrInvalidJob = errors.New("invalid job")
	// ErrInvalidMode is returned for a mode other than work or hire.
	ErrInvalidMode = errors.New("invalid mode")
	// ErrInvalidUrgency is returned for an urgency filter other than Low,
	// Medium or High.
	ErrInvalidUrgency = errors.New("invalid urgency")
	// ErrInvalidLocation is returned for coordinates off the globe.
	ErrInvalidLocation = errors.New("invalid location")
	// ErrEmptyMessage is returned when a chat message has no text.
	ErrEmptyMessage = errors.New("message text is empty")
)

// EventPublisher receives domain events after successful mutations.
type EventPublisher interface {
	Publish(ctx context.Context, event *model.Event) (uint64, error)
}

// Options wires a Marketplace. Zero fields get in-memory defaults.
type Options struct {
	Jobs          *store.JobStore
	Conversations *store.ConversationStore
	Locations     geo.LocationProvider
	Advisor       *advisor.Advisor
	Events        EventPublisher
	Now           func() time.Time
	NewID         func() string
}

// JobFilter narrows a job listing.
type JobFilter struct {
	Search  string
	Urgency model.Urgency
	// Mode overrides the session mode when set.
	Mode model.Mode
}

// Marketplace owns every piece of mutable state: the job and conversation
// stores and one session per viewer. All mutations go through it.
type Marketplace struct {
	jobs          *store.JobStore
	conversations *store.ConversationStore
	locations     geo.LocationProvider
	advisor       *advisor.Advisor
	events        EventPublisher
	logger        *logger.Logger
	now           func() time.Time
	newID         func() string

	mu       sync.Mutex
	sessions map[string]*model.Session
}

// NewMarketplace creates a marketplace controller.
func NewMarketplace(opts Options, log *logger.Logger) *Marketplace {
	if log == nil {
		log = logger.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Jobs == nil {
		opts.Jobs = store.NewJobStore()
	}
	if opts.Conversations == nil {
		opts.Conversations = store.NewConversationStore(opts.Now)
	}
	if opts.Locations == nil {
		opts.Locations = geo.NewJitter()
	}
	if opts.Advisor == nil {
		opts.Advisor = advisor.New(nil, nil, advisor.Config{}, log)
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.Must(uuid.NewV7()).String() }
	}

	return &Marketplace{
		jobs:          opts.Jobs,
		conversations: opts.Conversations,
		locations:     opts.Locations,
		advisor:       opts.Advisor,
		events:        opts.Events,
		logger:        log,
		now:           opts.Now,
		newID:         opts.NewID,
		sessions:      make(map[string]*model.Session),
	}
}

// sessionLocked returns the viewer's session, creating it at {0,0} in work
// mode. Callers hold m.mu.
func (m *Marketplace) sessionLocked(viewerID string) *model.Session {
	s, ok := m.sessions[viewerID]
	if !ok {
		s = &model.Session{ViewerID: viewerID, Mode: model.ModeWork}
		m.sessions[viewerID] = s
	}
	return s
}

// Session returns a copy of the viewer's session with the active
// conversation resolved.
func (m *Marketplace) Session(ctx context.Context, viewerID string) model.Session {
	m.mu.Lock()
	s := *m.sessionLocked(viewerID)
	m.mu.Unlock()

	if s.ActiveConversationID != "" {
		if conv, err := m.conversations.Get(s.ActiveConversationID); err == nil {
			s.ActiveConversation = &conv
		}
	}
	return s
}

// SetLocation records where the viewer is. Distances are computed from it
// on every subsequent query.
func (m *Marketplace) SetLocation(ctx context.Context, viewerID string, loc model.Coordinate) error {
	if err := validateCoordinate(loc); err != nil {
		return err
	}

	m.mu.Lock()
	m.sessionLocked(viewerID).Location = loc
	m.mu.Unlock()

	return nil
}

// SetMode switches the viewer between work and hire.
func (m *Marketplace) SetMode(ctx context.Context, viewerID string, mode model.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	m.mu.Lock()
	m.sessionLocked(viewerID).Mode = mode
	m.mu.Unlock()

	return nil
}

// Jobs lists jobs for the viewer, annotated with distance from the
// viewer's current location, filtered and ordered most urgent first.
func (m *Marketplace) Jobs(ctx context.Context, viewerID string, f JobFilter) ([]model.Job, error) {
	if f.Mode != "" && !f.Mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, f.Mode)
	}
	if f.Urgency != "" && !f.Urgency.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUrgency, f.Urgency)
	}

	m.mu.Lock()
	s := *m.sessionLocked(viewerID)
	m.mu.Unlock()

	mode := s.Mode
	if f.Mode != "" {
		mode = f.Mode
	}

	jobs := query.Jobs(m.jobs.All(), query.Params{
		Viewer:   s.Location,
		ViewerID: viewerID,
		Search:   f.Search,
		Urgency:  f.Urgency,
		Mode:     mode,
	})

	metrics.JobQueryResults.WithLabelValues(string(mode)).Observe(float64(len(jobs)))

	return jobs, nil
}

// Job returns one job with its distance from the viewer.
func (m *Marketplace) Job(ctx context.Context, viewerID, jobID string) (model.Job, error) {
	job, err := m.jobs.Get(jobID)
	if err != nil {
		return model.Job{}, err
	}

	m.mu.Lock()
	loc := m.sessionLocked(viewerID).Location
	m.mu.Unlock()

	if d, ok := geo.Measure(loc, job.Location); ok {
		job.Distance = &d
	}
	return job, nil
}

// PostJob publishes a new job on behalf of the viewer near the viewer's
// location and switches the viewer to hire mode.
func (m *Marketplace) PostJob(ctx context.Context, viewer model.Viewer, req *model.PostJobRequest) (model.Job, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)

	switch {
	case title == "":
		return model.Job{}, fmt.Errorf("%w: title is required", ErrInvalidJob)
	case description == "":
		return model.Job{}, fmt.Errorf("%w: description is required", ErrInvalidJob)
	case !req.Category.Valid():
		return model.Job{}, fmt.Errorf("%w: unknown category %q", ErrInvalidJob, req.Category)
	case req.Price < 0 || math.IsNaN(req.Price) || math.IsInf(req.Price, 0):
		return model.Job{}, fmt.Errorf("%w: price must be a non-negative number", ErrInvalidJob)
	}

	urgency := req.Urgency
	if urgency == "" {
		urgency = model.UrgencyMedium
	}
	if !urgency.Valid() {
		return model.Job{}, fmt.Errorf("%w: unknown urgency %q", ErrInvalidJob, urgency)
	}

	m.mu.Lock()
	origin := m.sessionLocked(viewer.ID).Location
	m.mu.Unlock()

	job := model.Job{
		ID:           m.newID(),
		Title:        title,
		Description:  description,
		Category:     req.Category,
		Price:        req.Price,
		Urgency:      urgency,
		Status:       model.JobStatusOpen,
		SeekerID:     viewer.ID,
		SeekerName:   viewer.Name,
		SeekerAvatar: viewer.Avatar,
		Location:     m.locations.Place(origin),
		CreatedAt:    m.now().UTC(),
	}

	if err := m.jobs.Append(job); err != nil {
		return model.Job{}, err
	}

	m.mu.Lock()
	m.sessionLocked(viewer.ID).Mode = model.ModeHire
	m.mu.Unlock()

	metrics.JobsPostedTotal.WithLabelValues(string(job.Category)).Inc()
	m.logger.WithJob(job.ID, viewer.ID).Info("job posted",
		zap.String("category", string(job.Category)),
	)
	m.publish(ctx, model.EventTypeJobPosted, job.ID, viewer.ID, map[string]any{
		"title":    job.Title,
		"category": job.Category,
		"urgency":  job.Urgency,
		"price":    job.Price,
	})

	if d, ok := geo.Measure(origin, job.Location); ok {
		job.Distance = &d
	}
	return job, nil
}

// StartConversation opens the chat for a job, creating it on first use,
// and makes it the viewer's active conversation.
func (m *Marketplace) StartConversation(ctx context.Context, viewer model.Viewer, jobID string) (model.Conversation, error) {
	job, err := m.jobs.Get(jobID)
	if err != nil {
		return model.Conversation{}, err
	}

	conv, created := m.conversations.GetOrCreate(job, viewer.ID)

	m.mu.Lock()
	m.sessionLocked(viewer.ID).ActiveConversationID = conv.ID
	m.mu.Unlock()

	if created {
		metrics.ConversationsTotal.Inc()
		m.logger.WithConversation(conv.ID, viewer.ID).Info("conversation started",
			zap.String("job_id", job.ID),
		)
		m.publish(ctx, model.EventTypeConversationStarted, conv.ID, viewer.ID, map[string]any{
			"job_id":         job.ID,
			"participant_id": job.SeekerID,
		})
	}

	return m.conversations.Get(conv.ID)
}

// OpenConversation returns a conversation and makes it the viewer's active
// one.
func (m *Marketplace) OpenConversation(ctx context.Context, viewerID, conversationID string) (model.Conversation, error) {
	conv, err := m.conversations.Get(conversationID)
	if err != nil {
		return model.Conversation{}, err
	}

	m.mu.Lock()
	m.sessionLocked(viewerID).ActiveConversationID = conv.ID
	m.mu.Unlock()

	return conv, nil
}

// Conversations lists the conversations the viewer takes part in.
func (m *Marketplace) Conversations(ctx context.Context, viewerID string) []model.Conversation {
	return m.conversations.ListFor(viewerID)
}

// SendMessage appends a message from the viewer to a conversation. The
// returned conversation, the store and the viewer's active conversation
// all reflect the new message.
func (m *Marketplace) SendMessage(ctx context.Context, viewer model.Viewer, conversationID, text string) (model.Conversation, error) {
	if strings.TrimSpace(text) == "" {
		return model.Conversation{}, ErrEmptyMessage
	}

	conv, err := m.conversations.AppendMessage(conversationID, viewer.ID, text)
	if err != nil {
		return model.Conversation{}, err
	}

	m.mu.Lock()
	m.sessionLocked(viewer.ID).ActiveConversationID = conv.ID
	m.mu.Unlock()

	metrics.MessagesTotal.Inc()
	m.publish(ctx, model.EventTypeMessageSent, conversationID, viewer.ID, map[string]any{
		"text": text,
	})

	return m.conversations.Get(conversationID)
}

// RefineDraft polishes a job draft. When the advisor fails the original
// text is returned with Refined unset.
func (m *Marketplace) RefineDraft(ctx context.Context, req *model.RefineRequest) model.RefineResponse {
	r, err := m.advisor.Refine(ctx, req.Title, req.Description)
	if err != nil {
		return model.RefineResponse{
			Title:       req.Title,
			Description: req.Description,
		}
	}

	return model.RefineResponse{
		Title:               r.RefinedTitle,
		Description:         r.RefinedDescription,
		SuggestedPriceRange: r.SuggestedPriceRange,
		Refined:             true,
	}
}

// Advice returns tips for a job description.
func (m *Marketplace) Advice(ctx context.Context, description string) model.AdviceResponse {
	a := m.advisor.Advise(ctx, description)
	return model.AdviceResponse{Advice: a.Text, Fallback: a.Fallback}
}

// AdviceForJob returns tips for a stored job.
func (m *Marketplace) AdviceForJob(ctx context.Context, jobID string) (model.AdviceResponse, error) {
	job, err := m.jobs.Get(jobID)
	if err != nil {
		return model.AdviceResponse{}, err
	}
	return m.Advice(ctx, job.Description), nil
}

func (m *Marketplace) publish(ctx context.Context, eventType model.EventType, subjectID, actorID string, payload map[string]any) {
	if m.events == nil {
		return
	}

	event := &model.Event{
		ID:        m.newID(),
		Type:      eventType,
		SubjectID: subjectID,
		ActorID:   actorID,
		Payload:   payload,
		CreatedAt: m.now().UTC(),
	}

	if _, err := m.events.Publish(ctx, event); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(string(eventType), "error").Inc()
		m.logger.Warn("failed to publish event",
			zap.String("type", string(eventType)),
			zap.String("subject_id", subjectID),
			zap.Error(err),
		)
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(string(eventType), "ok").Inc()
}

func validateCoordinate(c model.Coordinate) error {
	lat, lng := c.Latitude, c.Longitude
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return fmt.Errorf("%w: coordinates must be finite", ErrInvalidLocation)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return fmt.Errorf("%w: (%v, %v) is out of range", ErrInvalidLocation, lat, lng)
	}
	return nil
}
