package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jonathan/fragrance-customizer/internal/types"
)

// fingerprintVersion is bumped whenever recipe generation changes output for the same input.
const fingerprintVersion = "v1"

type fingerprintInput struct {
	Version   string          `json:"v"`
	ProfileID string          `json:"profile_id"`
	Language  string          `json:"language"`
	Feedback  *types.Feedback `json:"feedback"`
}

// Fingerprint returns a stable hex digest of a recipe request. Map keys are
// encoded in sorted order, so logically equal feedback hashes identically.
// A nil feedback and an empty one share a fingerprint.
func Fingerprint(profileID string, feedback *types.Feedback, language string) (string, error) {
	if feedback == nil {
		feedback = &types.Feedback{}
	}
	data, err := json.Marshal(fingerprintInput{
		Version:   fingerprintVersion,
		ProfileID: profileID,
		Language:  language,
		Feedback:  feedback,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode fingerprint input: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
