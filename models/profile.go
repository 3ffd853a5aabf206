package models

import (
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// FitnessGoal represents the goal a user selected on their profile
type FitnessGoal string

const (
	GoalWeightLoss     FitnessGoal = "weight-loss"
	GoalMuscleGain     FitnessGoal = "muscle-gain"
	GoalEndurance      FitnessGoal = "endurance"
	GoalStrength       FitnessGoal = "strength"
	GoalGeneralFitness FitnessGoal = "general-fitness"
)

// Valid reports whether g is one of the known goals
func (g FitnessGoal) Valid() bool {
	switch g {
	case GoalWeightLoss, GoalMuscleGain, GoalEndurance, GoalStrength, GoalGeneralFitness:
		return true
	}
	return false
}

// ProfileRecord represents the durable per-user fitness profile document.
// Nil pointer fields are absent values and are stored as NULL.
type ProfileRecord struct {
	UserID            uuid.UUID    `json:"user_id"`
	Name              string       `json:"name"`
	Email             string       `json:"email"`
	Height            *float64     `json:"height"`
	Weight            *float64     `json:"weight"`
	Age               *int         `json:"age"`
	FitnessGoal       *FitnessGoal `json:"fitness_goal"`
	ProfilePictureURL *string      `json:"profile_picture_url"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// ImageUpload is a pending profile picture chosen by the user
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// ProfileEditBuffer is the transient working copy edited by the profile view.
// Fields hold raw form input; empty strings mean "not set".
type ProfileEditBuffer struct {
	Name              string       `json:"name"`
	Email             string       `json:"email"`
	Height            string       `json:"height"`
	Weight            string       `json:"weight"`
	Age               string       `json:"age"`
	FitnessGoal       string       `json:"fitness_goal"`
	ProfilePictureURL string       `json:"profile_picture_url"`
	PendingImage      *ImageUpload `json:"-"`
}

// NewProfileEditBuffer seeds an edit buffer from the identity and, when
// present, the stored record. Absent fields become empty strings.
func NewProfileEditBuffer(identity Identity, record *ProfileRecord) *ProfileEditBuffer {
	buf := &ProfileEditBuffer{
		Name:  identity.Name,
		Email: identity.Email,
	}
	if record == nil {
		return buf
	}
	if record.Height != nil {
		buf.Height = strconv.FormatFloat(*record.Height, 'f', -1, 64)
	}
	if record.Weight != nil {
		buf.Weight = strconv.FormatFloat(*record.Weight, 'f', -1, 64)
	}
	if record.Age != nil {
		buf.Age = strconv.Itoa(*record.Age)
	}
	if record.FitnessGoal != nil {
		buf.FitnessGoal = string(*record.FitnessGoal)
	}
	if record.ProfilePictureURL != nil {
		buf.ProfilePictureURL = *record.ProfilePictureURL
	}
	return buf
}
