package model

import "time"

type Broker struct {
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Subscribed bool      `json:"subscribed"`
	CreatedAt  time.Time `json:"created_at"`
}
