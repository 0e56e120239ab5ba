package utils

import "github.com/google/uuid"

// GenerateConnectionID issues the unique identity assigned to a transport
// connection at upgrade time. Ids are never reused while a connection lives.
func GenerateConnectionID() string {
	return uuid.NewString()
}
