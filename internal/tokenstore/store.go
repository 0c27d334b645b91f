// Package tokenstore persists device refresh tokens so a restarted device
// can refresh instead of signing in again.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/jun/smartdoorlock/internal/crypto"
	"github.com/jun/smartdoorlock/internal/model"
)

// ErrNotFound is returned when no token is stored for a device.
var ErrNotFound = errors.New("device token not found")

// DynamoAPI is the subset of *dynamodb.Client used by Store.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Store keeps one DeviceToken per device in DynamoDB, with the refresh token
// sealed by an Encryptor.
type Store struct {
	client    DynamoAPI
	tableName string
	encryptor crypto.Encryptor

	// In-memory fallback
	tokens map[string]model.DeviceToken
	mu     sync.RWMutex
}

// New creates a Store. A nil client keeps tokens in memory.
func New(client DynamoAPI, tableName string, encryptor crypto.Encryptor) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		encryptor: encryptor,
		tokens:    make(map[string]model.DeviceToken),
	}
}

// Save seals refreshToken and stores it for deviceID. An empty refreshToken
// keeps the previously stored one.
func (s *Store) Save(ctx context.Context, deviceID string, tokenType int, localID, refreshToken string) error {
	existing, err := s.Get(ctx, deviceID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	encrypted := ""
	if existing != nil {
		encrypted = existing.EncryptedRefreshToken
	}
	if refreshToken != "" {
		encrypted, err = s.encryptor.Encrypt(ctx, deviceID, refreshToken)
		if err != nil {
			return fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
	}
	if encrypted == "" {
		return fmt.Errorf("no refresh token for device %s", deviceID)
	}

	dt := model.DeviceToken{
		DeviceID:              deviceID,
		TokenType:             tokenType,
		LocalID:               localID,
		EncryptedRefreshToken: encrypted,
		UpdatedAt:             time.Now().UTC(),
	}

	if s.client == nil {
		s.mu.Lock()
		s.tokens[deviceID] = dt
		s.mu.Unlock()
		return nil
	}

	item, err := attributevalue.MarshalMap(dt)
	if err != nil {
		return fmt.Errorf("failed to marshal device token: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to save device token to DynamoDB: %w", err)
	}
	return nil
}

// Get returns the stored record for deviceID.
func (s *Store) Get(ctx context.Context, deviceID string) (*model.DeviceToken, error) {
	if s.client == nil {
		s.mu.RLock()
		dt, ok := s.tokens[deviceID]
		s.mu.RUnlock()
		if !ok {
			return nil, ErrNotFound
		}
		return &dt, nil
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"device_id": &types.AttributeValueMemberS{Value: deviceID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item from DynamoDB: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var dt model.DeviceToken
	if err := attributevalue.UnmarshalMap(out.Item, &dt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal device token: %w", err)
	}
	return &dt, nil
}

// RefreshToken returns the opened refresh token for deviceID.
func (s *Store) RefreshToken(ctx context.Context, deviceID string) (string, error) {
	dt, err := s.Get(ctx, deviceID)
	if err != nil {
		return "", err
	}
	rt, err := s.encryptor.Decrypt(ctx, deviceID, dt.EncryptedRefreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt refresh token: %w", err)
	}
	return rt, nil
}

// Delete forgets the token for deviceID. Deleting a missing token is not an error.
func (s *Store) Delete(ctx context.Context, deviceID string) error {
	if s.client == nil {
		s.mu.Lock()
		delete(s.tokens, deviceID)
		s.mu.Unlock()
		return nil
	}

	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"device_id": &types.AttributeValueMemberS{Value: deviceID},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete device token: %w", err)
	}
	return nil
}
