package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/neighborjob/marketplace/internal/geo"
	"github.com/neighborjob/marketplace/internal/model"
	"github.com/neighborjob/marketplace/internal/service"
	"github.com/neighborjob/marketplace/internal/store"
)

var (
	now    = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	viewer = service.DemoViewer
	ctx    = context.Background()
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e *model.Event) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return 0, p.err
	}
	p.events = append(p.events, *e)
	return uint64(len(p.events)), nil
}

func (p *recordingPublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func newMarketplace(t *testing.T, events service.EventPublisher) *service.Marketplace {
	t.Helper()
	n := 0
	return service.NewMarketplace(service.Options{
		Jobs:      store.NewJobStore(service.DemoJobs(now)...),
		Locations: geo.Fixed(model.Coordinate{Latitude: 0.004, Longitude: -0.002}),
		Events:    events,
		Now:       func() time.Time { return now },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}, nil)
}

// ── Session ────────────────────────────────────────────────────────────────

func TestSession_Defaults(t *testing.T) {
	m := newMarketplace(t, nil)
	s := m.Session(ctx, viewer.ID)
	if s.Mode != model.ModeWork {
		t.Errorf("Mode = %q, want work", s.Mode)
	}
	if s.Location != (model.Coordinate{}) {
		t.Errorf("Location = %v, want {0,0}", s.Location)
	}
	if s.ActiveConversation != nil {
		t.Error("fresh session has an active conversation")
	}
}

func TestSetLocation_Validates(t *testing.T) {
	m := newMarketplace(t, nil)
	bad := []model.Coordinate{{Latitude: 91}, {Longitude: -181}}
	for _, c := range bad {
		if err := m.SetLocation(ctx, viewer.ID, c); !errors.Is(err, service.ErrInvalidLocation) {
			t.Errorf("SetLocation(%v) = %v, want ErrInvalidLocation", c, err)
		}
	}
}

func TestSetMode_Validates(t *testing.T) {
	m := newMarketplace(t, nil)
	if err := m.SetMode(ctx, viewer.ID, "browse"); !errors.Is(err, service.ErrInvalidMode) {
		t.Errorf("SetMode(browse) = %v, want ErrInvalidMode", err)
	}
	if err := m.SetMode(ctx, viewer.ID, model.ModeHire); err != nil {
		t.Fatalf("SetMode(hire) returned error: %v", err)
	}
	if got := m.Session(ctx, viewer.ID).Mode; got != model.ModeHire {
		t.Errorf("Mode = %q, want hire", got)
	}
}

// ── Jobs ───────────────────────────────────────────────────────────────────

func TestJobs_WorkModeFromOrigin(t *testing.T) {
	m := newMarketplace(t, nil)

	jobs, err := m.Jobs(ctx, viewer.ID, service.JobFilter{})
	if err != nil {
		t.Fatalf("Jobs returned error: %v", err)
	}
	want := []string{"2", "1", "3"}
	if len(jobs) != len(want) {
		t.Fatalf("len = %d, want %d", len(jobs), len(want))
	}
	for i, id := range want {
		if jobs[i].ID != id {
			t.Errorf("jobs[%d] = %s, want %s", i, jobs[i].ID, id)
		}
		if jobs[i].Distance == nil {
			t.Errorf("job %s has no distance", jobs[i].ID)
		}
	}
	if *jobs[1].Distance != 157 {
		t.Errorf("distance to job 1 = %d, want 157", *jobs[1].Distance)
	}
}

func TestJobs_DistanceRecomputedAfterMove(t *testing.T) {
	m := newMarketplace(t, nil)

	before, _ := m.Jobs(ctx, viewer.ID, service.JobFilter{Search: "retriever"})
	if err := m.SetLocation(ctx, viewer.ID, model.Coordinate{Latitude: 0.001, Longitude: 0.001}); err != nil {
		t.Fatalf("SetLocation returned error: %v", err)
	}
	after, _ := m.Jobs(ctx, viewer.ID, service.JobFilter{Search: "retriever"})

	if *before[0].Distance != 157 || *after[0].Distance != 0 {
		t.Errorf("distance before/after = %d/%d, want 157/0", *before[0].Distance, *after[0].Distance)
	}
}

func TestJobs_RejectsBadFilters(t *testing.T) {
	m := newMarketplace(t, nil)
	if _, err := m.Jobs(ctx, viewer.ID, service.JobFilter{Mode: "all"}); !errors.Is(err, service.ErrInvalidMode) {
		t.Errorf("mode=all: %v, want ErrInvalidMode", err)
	}
	if _, err := m.Jobs(ctx, viewer.ID, service.JobFilter{Urgency: "Urgent"}); !errors.Is(err, service.ErrInvalidUrgency) {
		t.Errorf("urgency=Urgent: %v, want ErrInvalidUrgency", err)
	}
}

// ── PostJob ────────────────────────────────────────────────────────────────

func TestPostJob(t *testing.T) {
	events := &recordingPublisher{}
	m := newMarketplace(t, events)

	job, err := m.PostJob(ctx, viewer, &model.PostJobRequest{
		Title:       "  Clean my backyard ",
		Description: "Leaves everywhere.",
		Category:    model.CategoryCleaning,
		Price:       20,
	})
	if err != nil {
		t.Fatalf("PostJob returned error: %v", err)
	}

	if job.ID != "id-1" {
		t.Errorf("ID = %q, want id-1", job.ID)
	}
	if job.Title != "Clean my backyard" {
		t.Errorf("Title = %q, want trimmed", job.Title)
	}
	if job.Status != model.JobStatusOpen {
		t.Errorf("Status = %q, want OPEN", job.Status)
	}
	if job.Urgency != model.UrgencyMedium {
		t.Errorf("Urgency = %q, want Medium default", job.Urgency)
	}
	if job.SeekerID != viewer.ID || job.SeekerName != viewer.Name || job.SeekerAvatar != viewer.Avatar {
		t.Errorf("seeker = %q/%q/%q", job.SeekerID, job.SeekerName, job.SeekerAvatar)
	}
	if job.Location != (model.Coordinate{Latitude: 0.004, Longitude: -0.002}) {
		t.Errorf("Location = %v, want the provider's coordinate", job.Location)
	}
	if !job.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", job.CreatedAt, now)
	}

	if got := m.Session(ctx, viewer.ID).Mode; got != model.ModeHire {
		t.Errorf("mode after posting = %q, want hire", got)
	}

	hire, _ := m.Jobs(ctx, viewer.ID, service.JobFilter{})
	if len(hire) != 1 || hire[0].ID != job.ID {
		t.Errorf("hire view = %v, want only the new job", hire)
	}
	work, _ := m.Jobs(ctx, viewer.ID, service.JobFilter{Mode: model.ModeWork})
	for _, j := range work {
		if j.ID == job.ID {
			t.Error("own job shows up in work view")
		}
	}

	if types := events.types(); len(types) != 1 || types[0] != model.EventTypeJobPosted {
		t.Errorf("events = %v, want [job.posted]", types)
	}
}

func TestPostJob_Validation(t *testing.T) {
	m := newMarketplace(t, nil)
	cases := []struct {
		name string
		req  model.PostJobRequest
	}{
		{"blank title", model.PostJobRequest{Title: " ", Description: "d", Category: model.CategoryCleaning}},
		{"blank description", model.PostJobRequest{Title: "t", Category: model.CategoryCleaning}},
		{"unknown category", model.PostJobRequest{Title: "t", Description: "d", Category: "Gardening"}},
		{"negative price", model.PostJobRequest{Title: "t", Description: "d", Category: model.CategoryCleaning, Price: -1}},
		{"unknown urgency", model.PostJobRequest{Title: "t", Description: "d", Category: model.CategoryCleaning, Urgency: "ASAP"}},
	}
	for _, c := range cases {
		if _, err := m.PostJob(ctx, viewer, &c.req); !errors.Is(err, service.ErrInvalidJob) {
			t.Errorf("%s: err = %v, want ErrInvalidJob", c.name, err)
		}
	}
}

// ── Conversations ──────────────────────────────────────────────────────────

func TestStartConversation_CreatesOnceAndActivates(t *testing.T) {
	events := &recordingPublisher{}
	m := newMarketplace(t, events)

	first, err := m.StartConversation(ctx, viewer, "1")
	if err != nil {
		t.Fatalf("StartConversation returned error: %v", err)
	}
	if first.ID != "c_1" || first.ParticipantID != "u1" {
		t.Errorf("conversation = %s with %s, want c_1 with u1", first.ID, first.ParticipantID)
	}

	if _, err := m.SendMessage(ctx, viewer, first.ID, "Tomorrow at 5pm"); err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}

	again, err := m.StartConversation(ctx, viewer, "1")
	if err != nil {
		t.Fatalf("second StartConversation returned error: %v", err)
	}
	if len(again.Messages) != 2 {
		t.Errorf("len(Messages) = %d, want 2 (no reset)", len(again.Messages))
	}

	want := []model.EventType{model.EventTypeConversationStarted, model.EventTypeMessageSent}
	got := events.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	s := m.Session(ctx, viewer.ID)
	if s.ActiveConversationID != "c_1" || s.ActiveConversation == nil {
		t.Fatalf("active conversation = %q", s.ActiveConversationID)
	}
}

func TestStartConversation_UnknownJob(t *testing.T) {
	m := newMarketplace(t, nil)
	if _, err := m.StartConversation(ctx, viewer, "404"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSendMessage_ActiveViewStaysInSync(t *testing.T) {
	m := newMarketplace(t, nil)
	conv, _ := m.StartConversation(ctx, viewer, "2")

	updated, err := m.SendMessage(ctx, viewer, conv.ID, "Tomorrow at 5pm")
	if err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	if len(updated.Messages) != 2 || updated.LastMessage != "Tomorrow at 5pm" {
		t.Errorf("updated = %d messages, last %q", len(updated.Messages), updated.LastMessage)
	}

	active := m.Session(ctx, viewer.ID).ActiveConversation
	if active == nil || len(active.Messages) != 2 || active.LastMessage != "Tomorrow at 5pm" {
		t.Error("active conversation diverged from the store")
	}

	listed := m.Conversations(ctx, viewer.ID)
	if len(listed) != 1 || listed[0].LastMessage != "Tomorrow at 5pm" {
		t.Error("conversation list diverged from the store")
	}
}

func TestConversations_SecondApplicantListsSharedThread(t *testing.T) {
	m := newMarketplace(t, nil)
	alice := model.Viewer{ID: "alice", Name: "Alice"}
	bob := model.Viewer{ID: "bob", Name: "Bob"}

	first, err := m.StartConversation(ctx, alice, "1")
	if err != nil {
		t.Fatalf("StartConversation(alice): %v", err)
	}
	second, err := m.StartConversation(ctx, bob, "1")
	if err != nil {
		t.Fatalf("StartConversation(bob): %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("applicants got %q and %q, want one thread", first.ID, second.ID)
	}
	if _, err := m.SendMessage(ctx, bob, second.ID, "I can help too"); err != nil {
		t.Fatalf("SendMessage(bob): %v", err)
	}

	for _, v := range []model.Viewer{alice, bob} {
		listed := m.Conversations(ctx, v.ID)
		if len(listed) != 1 || listed[0].ID != "c_1" {
			t.Errorf("%s lists %d conversations, want c_1", v.ID, len(listed))
		}
	}
	if active := m.Session(ctx, bob.ID).ActiveConversation; active == nil || active.ID != "c_1" {
		t.Error("bob's active conversation is not c_1")
	}
}

func TestSendMessage_Errors(t *testing.T) {
	m := newMarketplace(t, nil)
	if _, err := m.SendMessage(ctx, viewer, "c_missing", "hello"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown conversation: %v, want ErrNotFound", err)
	}
	conv, _ := m.StartConversation(ctx, viewer, "1")
	if _, err := m.SendMessage(ctx, viewer, conv.ID, "   "); !errors.Is(err, service.ErrEmptyMessage) {
		t.Errorf("blank text: %v, want ErrEmptyMessage", err)
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	m := newMarketplace(t, &recordingPublisher{err: errors.New("nats down")})
	if _, err := m.StartConversation(ctx, viewer, "1"); err != nil {
		t.Errorf("StartConversation failed because of publisher: %v", err)
	}
}

// ── Advisor ────────────────────────────────────────────────────────────────

func TestRefineDraft_FallsBackToOriginal(t *testing.T) {
	m := newMarketplace(t, nil)
	got := m.RefineDraft(ctx, &model.RefineRequest{Title: "walk dog", Description: "30 mins"})
	if got.Refined {
		t.Error("Refined = true without an LLM")
	}
	if got.Title != "walk dog" || got.Description != "30 mins" {
		t.Errorf("got %q/%q, want the originals", got.Title, got.Description)
	}
}

func TestAdviceForJob(t *testing.T) {
	m := newMarketplace(t, nil)
	got, err := m.AdviceForJob(ctx, "2")
	if err != nil {
		t.Fatalf("AdviceForJob returned error: %v", err)
	}
	if !got.Fallback || got.Advice == "" {
		t.Errorf("advice = %+v, want fallback text", got)
	}
	if _, err := m.AdviceForJob(ctx, "404"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown job: %v, want ErrNotFound", err)
	}
}
