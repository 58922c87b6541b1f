package domain

// Actor roles
const (
	RoleRider = "rider" // Field actor collecting cash
	RoleAdmin = "admin" // Platform treasury / back office
)

// User Model
type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`               // Primary key
	Name        string `gorm:"not null" json:"name"`               // Display name
	Mobile      string `gorm:"uniqueIndex;not null" json:"mobile"` // Unique mobile number, used for login
	Email       string `json:"email"`                              // Contact email (generated for riders)
	Password    string `gorm:"not null" json:"-"`                  // Hashed password
	Role        string `gorm:"default:rider" json:"role"`          // Role: rider or admin
	DeviceToken string `json:"-"`                                  // Opaque push-notification token
	Wallet      Wallet `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"wallet,omitempty"` // One-to-one relationship with Wallet
}
