package entity

const (
	UserTypeCustomer = "User"
	UserTypeOwner    = "Theatre Owner"
)

type User struct {
	ID       string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
	FCMToken string `json:"fcm_token"`

	// AccountFields holds the legacy field-name variants under which a
	// connected payment account ID may be stored.
	AccountFields map[string]string `json:"account_fields"`
}
