// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a registered account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FirstName string    `gorm:"size:100;not null" json:"first_name"`
	LastName  string    `gorm:"size:100;not null" json:"last_name"`
	Email     string    `gorm:"size:254;uniqueIndex;not null" json:"email,omitempty"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
	Posts     []Post    `gorm:"foreignKey:UserID" json:"posts,omitempty"`
	// PostsCount is not persisted; computed at query time
	PostsCount int `gorm:"->" json:"posts_count,omitempty"`
}

// Actor is the authenticated identity performing an operation. It is built
// once at the request boundary and passed by value into every service call.
type Actor struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ActorFromUser builds an Actor from a loaded user row.
func ActorFromUser(u *User) Actor {
	return Actor{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
}

// Author returns the public user shape embedded in created content.
func (a Actor) Author() *User {
	return &User{ID: a.ID, FirstName: a.FirstName, LastName: a.LastName}
}
