package validation

// CreateTeamsRequest mirrors the fields needed for create teams validation.
type CreateTeamsRequest struct {
	TeamCount        int
	ParticipantCount int
}

// ValidateCreateTeamsRequest validates the fields of a create teams request.
// The UI offers 1-10 teams and 1-100 participants; the API enforces the same
// bounds.
func ValidateCreateTeamsRequest(req CreateTeamsRequest) []FieldError {
	var errs []FieldError

	if req.TeamCount < 1 || req.TeamCount > 10 {
		errs = append(errs, FieldError{Field: "teamCount", Message: "teamCount must be between 1 and 10"})
	}

	if req.ParticipantCount < 1 || req.ParticipantCount > 100 {
		errs = append(errs, FieldError{Field: "participantCount", Message: "participantCount must be between 1 and 100"})
	}

	return errs
}

// AdjustPointsRequest mirrors the fields needed for points adjustment validation.
type AdjustPointsRequest struct {
	Delta int
}

// ValidateAdjustPointsRequest validates a manual points adjustment.
func ValidateAdjustPointsRequest(req AdjustPointsRequest) []FieldError {
	var errs []FieldError

	if req.Delta == 0 {
		errs = append(errs, FieldError{Field: "delta", Message: "delta must not be zero"})
	} else if req.Delta < -1000 || req.Delta > 1000 {
		errs = append(errs, FieldError{Field: "delta", Message: "delta must be between -1000 and 1000"})
	}

	return errs
}
