package kme

import (
	"context"
	"encoding/base64"
	"fmt"
)

// GetHealth performs a lightweight liveness probe against the KME.
func (c *Client) GetHealth(ctx context.Context) (*HealthStatus, error) {
	var result HealthStatus
	if err := c.doOnce(ctx, "GET", "/api/v1/health", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RequestKey fetches key material of the requested bit length. The bit
// length is rounded up to a whole number of bytes by the KME.
func (c *Client) RequestKey(ctx context.Context, bitLength int, purpose string) (keyID string, material []byte, err error) {
	req := KeyRequest{
		BitLength: bitLength,
		Purpose:   purpose,
		SAEID:     c.saeID,
	}

	var result KeyResponse
	if err := c.Do(ctx, "POST", "/api/v1/keys", req, &result); err != nil {
		return "", nil, err
	}

	material, err = base64.StdEncoding.DecodeString(result.KeyMaterialBase64)
	if err != nil {
		return "", nil, fmt.Errorf("decode key material: %w", err)
	}

	if result.BitLength < bitLength || len(material)*8 < bitLength {
		return "", nil, &ShortKeyError{Requested: bitLength, Received: len(material) * 8}
	}

	return result.KeyID, material, nil
}
