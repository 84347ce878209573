package domain

// Train Model
type Train struct {
	TrainNo        int    `gorm:"primaryKey;autoIncrement:false"` // Train number, assigned by the operator
	TrainName      string `gorm:"not null;size:255"`              // Train name
	StartingPoint  string `gorm:"not null;size:255"`              // Origin station
	Destination    string `gorm:"not null;size:255"`              // Destination station
	Specifications string `gorm:"size:255"`                       // Free-text extra specifications
	SeatsAvailable int    `gorm:"not null"`                       // Remaining bookable seats, never negative
}
