package models

// Party is the customer a project is billed to.
type Party struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Name    string `json:"name" gorm:"not null"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
	Zip     string `json:"zip"`
	Email   string `json:"email" gorm:"index"`
	Active  bool   `json:"-" gorm:"not null;default:true"`
}
