package entities

import "time"

// Patient represents a patient demographic record. Patients are created
// by seed or administrative tooling and are read-only for the answer
// pipeline.
type Patient struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Age       int       `json:"age" db:"age"`
	Gender    string    `json:"gender" db:"gender"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
