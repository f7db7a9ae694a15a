package service

import (
	"time"

	"github.com/neighborjob/marketplace/internal/model"
)

// DemoViewer is the identity the demo data and dev tokens are built around.
var DemoViewer = model.Viewer{
	ID:     "me",
	Name:   "Alex Rivera",
	Avatar: "https://picsum.photos/seed/alex/100/100",
}

// DemoJobs returns a few open jobs around the origin posted by other
// neighbours.
func DemoJobs(now time.Time) []model.Job {
	now = now.UTC()
	return []model.Job{
		{
			ID:           "1",
			Title:        "Walk my Golden Retriever",
			Description:  "Looking for someone to walk Buddy for 30 mins. He is very friendly!",
			Category:     model.CategoryPetCare,
			Price:        15,
			Urgency:      model.UrgencyMedium,
			Status:       model.JobStatusOpen,
			SeekerID:     "u1",
			SeekerName:   "Sarah Jenkins",
			SeekerAvatar: "https://picsum.photos/seed/sarah/100/100",
			Location:     model.Coordinate{Latitude: 0.001, Longitude: 0.001},
			CreatedAt:    now,
		},
		{
			ID:           "2",
			Title:        "Fix leaky kitchen faucet",
			Description:  "The faucet in my kitchen has been dripping all night. Need a quick fix.",
			Category:     model.CategoryRepairs,
			Price:        45,
			Urgency:      model.UrgencyHigh,
			Status:       model.JobStatusOpen,
			SeekerID:     "u2",
			SeekerName:   "David Chen",
			SeekerAvatar: "https://picsum.photos/seed/david/100/100",
			Location:     model.Coordinate{Latitude: -0.002, Longitude: 0.003},
			CreatedAt:    now,
		},
		{
			ID:           "3",
			Title:        "Help moving couch to 3rd floor",
			Description:  "Just need one extra set of hands for 15 minutes to carry a small sofa.",
			Category:     model.CategoryMoving,
			Price:        25,
			Urgency:      model.UrgencyMedium,
			Status:       model.JobStatusOpen,
			SeekerID:     "u3",
			SeekerName:   "Michael Scott",
			SeekerAvatar: "https://picsum.photos/seed/michael/100/100",
			Location:     model.Coordinate{Latitude: 0.004, Longitude: -0.002},
			CreatedAt:    now,
		},
	}
}
