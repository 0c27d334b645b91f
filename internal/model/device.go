package model

import "time"

// DeviceToken is the persisted auth state of one lock device.
type DeviceToken struct {
	DeviceID              string    `json:"device_id" dynamodbav:"device_id"`
	TokenType             int       `json:"token_type" dynamodbav:"token_type"`
	LocalID               string    `json:"local_id" dynamodbav:"local_id"` // database user uid
	EncryptedRefreshToken string    `json:"encrypted_refresh_token" dynamodbav:"encrypted_refresh_token"`
	UpdatedAt             time.Time `json:"updated_at" dynamodbav:"updated_at"`
}
