// Package evidence defines the naming convention for captured artifacts.
// Paths are deterministic so repeated runs overwrite stale evidence instead
// of accumulating it.
package evidence

import (
	"fmt"
	"path/filepath"
)

// DefaultRoot is the directory artifacts are written under when no override
// is configured. The surrounding runner is expected to create it.
const DefaultRoot = "test-results/evidence"

// ArtifactPath maps a feature tag and artifact suffix to a stable path under
// root, following <root>/<featureTag>[-<suffix>].png. Two captures in the
// same scenario must use distinct suffixes to avoid overwriting one another.
func ArtifactPath(root, featureTag, suffix string) string {
	name := featureTag
	if suffix != "" {
		name = fmt.Sprintf("%s-%s", featureTag, suffix)
	}
	return filepath.Join(root, name+".png")
}
