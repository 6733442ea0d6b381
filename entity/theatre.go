package entity

const (
	TheatreStatusNotVerified = "Not Verified"
	TheatreStatusVerified    = "Verified"
	TheatreStatusDisapproved = "Disapproved"
)

type Theatre struct {
	ID              string `json:"theatre_id"`
	OwnerID         string `json:"owner_id"`
	Name            string `json:"name"`
	Status          string `json:"theatre_status"`
	RejectionReason string `json:"rejection_reason"`
}
