package models

import "time"

// Delivery records the outcome of sending a notification through one sink.
type Delivery struct {
	Sink  string `json:"sink" bson:"sink"`
	OK    bool   `json:"ok" bson:"ok"`
	Error string `json:"error,omitempty" bson:"error,omitempty"`
}

// AlertReport is an archived alert run, stored in MongoDB when history is enabled.
type AlertReport struct {
	ID           string     `json:"id" bson:"_id"`
	Source       string     `json:"source" bson:"source"`
	RecordsCount int        `json:"records_count" bson:"records_count"`
	Evaluation   Evaluation `json:"evaluation" bson:"evaluation"`
	Deliveries   []Delivery `json:"deliveries,omitempty" bson:"deliveries,omitempty"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
}
