// Package resolver extracts resource identifiers from canonical asset name
// strings. It knows nothing about specific resource kinds, only about the
// capturing groups of a descriptor's pattern, which is what lets new asset
// types be added purely as configuration.
package resolver

import (
	"errors"
	"fmt"

	"github.com/hmkz/google-cloud-add-bindings/internal/definitions"
)

// ErrAssetNameMismatch indicates an asset name that does not match its
// descriptor's pattern.
var ErrAssetNameMismatch = errors.New("asset name mismatch")

// Resolve matches assetName against the descriptor's pattern and returns the
// ordered capture groups. The match is anchored to the full string; a
// partial match is a failure, never a partial result.
func Resolve(at definitions.AssetType, assetName string) ([]string, error) {
	m := at.Pattern().FindStringSubmatch(assetName)
	if m == nil {
		return nil, fmt.Errorf("%w: %q does not match pattern %q for asset type %s",
			ErrAssetNameMismatch, assetName, at.AssetNamePattern, at.AssetType)
	}
	return m[1:], nil
}
