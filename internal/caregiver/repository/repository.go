package repository

import (
	"context"

	"echo-memory/backend/internal/caregiver/domain"
)

// Repository is the persistence interface for caregiver links.
type Repository interface {
	// RequestAccess records a read-only access request from caregiver to
	// patient. Repeated requests refresh the existing link.
	RequestAccess(ctx context.Context, caregiverID, patientID int64) error
	// ListPatients returns the patients the user cares for.
	ListPatients(ctx context.Context, caregiverID int64) ([]*domain.Connection, error)
	// ListCaregivers returns the caregivers linked to the patient.
	ListCaregivers(ctx context.Context, patientID int64) ([]*domain.Connection, error)
}
