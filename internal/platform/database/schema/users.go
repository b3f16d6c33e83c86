// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns of the database so queries
// built with fmt.Sprintf stay in step with the migrations.
package schema

// UsersTable represents the 'users' table
type UsersTable struct {
	Table        string
	ID           string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         string
	PhoneNumber  string
	IsActive     string
	HasAvatar    string
	CreatedAt    string
	UpdatedAt    string
}

// Users is the schema definition for users
var Users = UsersTable{
	Table:        "users",
	ID:           "id",
	Username:     "username",
	Email:        "email",
	FirstName:    "first_name",
	LastName:     "last_name",
	PasswordHash: "password_hash",
	Role:         "role",
	PhoneNumber:  "phone_number",
	IsActive:     "is_active",
	HasAvatar:    "has_avatar",
	CreatedAt:    "created_at",
	UpdatedAt:    "updated_at",
}
