package domain

// User Model
type User struct {
	UserID     string  `gorm:"primaryKey;size:30"`      // Primary key, assigned at registration
	Username   string  `gorm:"unique;not null;size:30"` // Unique username
	Password   string  `gorm:"not null;size:60"`        // BCrypt password hash
	FullName   string  `gorm:"not null;size:50"`        // Passenger full name
	Phone      string  `gorm:"not null;size:15"`        // Contact phone number
	NationalID *string `gorm:"unique;size:12"`          // National identity number, unique when present
	Address    string  `gorm:"not null;size:100"`       // Postal address
	Pincode    string  `gorm:"not null;size:6"`         // Postal code
	Age        int     `gorm:"not null"`                // Passenger age
}
