// Package model defines data structures for the NeighborJob marketplace.
package model

import (
	"time"
)

// Coordinate is a point in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Category is the kind of help a job asks for.
type Category string

const (
	CategoryCleaning   Category = "Cleaning"
	CategoryPetCare    Category = "Pet Care"
	CategoryMoving     Category = "Moving Help"
	CategoryRepairs    Category = "Minor Repairs"
	CategoryElderlyAid Category = "Elderly Aid"
	CategoryGroceries  Category = "Groceries"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryCleaning,
	CategoryPetCare,
	CategoryMoving,
	CategoryRepairs,
	CategoryElderlyAid,
	CategoryGroceries,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Urgency is the priority tier of a job.
type Urgency string

const (
	UrgencyLow    Urgency = "Low"
	UrgencyMedium Urgency = "Medium"
	UrgencyHigh   Urgency = "High"
)

// Weight ranks urgencies for sorting. Unknown values weigh 0.
func (u Urgency) Weight() int {
	switch u {
	case UrgencyHigh:
		return 3
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether u is one of Low, Medium or High.
func (u Urgency) Valid() bool {
	return u.Weight() > 0
}

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusOpen       JobStatus = "OPEN"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusCompleted  JobStatus = "COMPLETED"
)

// Job is a task posted by a seeker.
type Job struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     Category   `json:"category"`
	Price        float64    `json:"price"`
	Urgency      Urgency    `json:"urgency"`
	Status       JobStatus  `json:"status"`
	SeekerID     string     `json:"seekerId"`
	SeekerName   string     `json:"seekerName"`
	SeekerAvatar string     `json:"seekerAvatar"`
	Location     Coordinate `json:"location"`
	CreatedAt    time.Time  `json:"createdAt"`
	ProviderID   string     `json:"providerId,omitempty"`

	// Distance in meters from the current viewer. Computed per query,
	// nil when unknown.
	Distance *int `json:"distance,omitempty"`
}

// PostJobRequest is the request to post a new job.
type PostJobRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Price       float64  `json:"price"`
	Urgency     Urgency  `json:"urgency,omitempty"`
}

// ListJobsResponse is the response for a job query.
type ListJobsResponse struct {
	Jobs  []Job `json:"jobs"`
	Total int   `json:"total"`
}
