package updater

import (
	"strconv"
	"strings"
)

// GenerateCommitMessage builds the structured commit message for an asset
// update, embedding the machine-parseable updated-dependencies trailer block.
//
// The bump is classified from the first two dot-separated numeric components:
// major when the first component grows, minor when the second grows, patch
// otherwise.
func GenerateCommitMessage(assetName, currentVersion, latestVersion string) string {
	current := strings.Split(currentVersion, ".")
	latest := strings.Split(latestVersion, ".")

	updateKind := "patch"
	if numericComponent(latest, 0) > numericComponent(current, 0) {
		updateKind = "major"
	} else if numericComponent(latest, 1) > numericComponent(current, 1) {
		updateKind = "minor"
	}

	messageLines := []string{
		"Update " + assetName,
		"",
		"Updates " + assetName + " to version " + latestVersion + ".",
		"",
		"---",
		"updated-dependencies:",
		"- dependency-name: " + assetName,
		"  dependency-type: direct:production",
		"  update-type: version-update:semver-" + updateKind,
		"...",
		"",
		"",
	}
	return strings.Join(messageLines, "\n")
}

// numericComponent returns the i-th dot-separated component as a number,
// or 0 when absent or non-numeric.
func numericComponent(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.Atoi(parts[i])
	if err != nil {
		return 0
	}
	return n
}
