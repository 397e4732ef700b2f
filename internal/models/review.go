package models

import "time"

type Review struct {
	ReviewID  int       `json:"review_id"`
	ProductID int       `json:"product_id"`
	UserID    int       `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
