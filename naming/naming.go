// Package naming implements the asset naming conventions the unreal
// importer understands: LOD suffix detection driven by a user supplied
// regex, collision mesh prefixes, and normalization of object names to
// the character set unreal accepts.
//
// Regex errors never escape this package. A malformed pattern degrades
// to "no match" and the caller gets its input back unchanged.
package naming

import (
	"encoding/base64"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Collision volume prefixes recognized by the unreal FBX importer.
// Objects named with one of these prefixes are never primary assets.
var CollisionPrefixes = []string{"UBX", "UCP", "USP", "UCX"}

const collisionPrefixPattern = `U(BX|CP|SP|CX)_`

var collisionPrefixRegexp = regexp.MustCompile(`^` + collisionPrefixPattern)

// Characters outside this set get replaced with underscores. Unreal
// only tolerates "+", "-" and "_" besides alphanumerics.
var invalidNameChars = regexp.MustCompile(`[^-+\w]`)

var leadingFlagGroup = regexp.MustCompile(`^\(\?[a-zA-Z]*\)`)

// ExtractFlags splits a leading inline flag group off a user supplied
// pattern. Only the case-insensitive flag is honored; any other leading
// flag group is stripped and ignored.
func ExtractFlags(pattern string) (cleaned string, caseInsensitive bool) {
	if strings.HasPrefix(pattern, "(?i)") {
		caseInsensitive = true
		pattern = pattern[len("(?i)"):]
	}
	return leadingFlagGroup.ReplaceAllString(pattern, ""), caseInsensitive
}

func compileLodPattern(pattern string) (*regexp.Regexp, error) {
	cleaned, caseInsensitive := ExtractFlags(pattern)
	if caseInsensitive {
		return regexp.Compile(`(?i)(` + cleaned + `)`)
	}
	return regexp.Compile(`(` + cleaned + `)`)
}

// findLod locates the LOD substring of name and returns it. Malformed
// patterns and non-matches both report ok=false.
func findLod(name, pattern string) (lod string, ok bool) {
	re, err := compileLodPattern(pattern)
	if err != nil {
		return "", false
	}
	m := re.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	lod = m[len(m)-1]
	if lod == "" {
		lod = m[1]
	}
	if lod == "" {
		return "", false
	}
	return lod, true
}

// Lod0Name rewrites name so that its LOD suffix points at LOD zero,
// e.g. "Chair_LOD2" -> "Chair_LOD0". No match returns name unchanged.
func Lod0Name(name, pattern string) string {
	lod, ok := findLod(name, pattern)
	if !ok {
		return name
	}
	return strings.ReplaceAll(name, lod, lod[:len(lod)-1]+"0")
}

// LodIndex parses the trailing digit of the LOD suffix in name.
// Returns 0 when the pattern does not match or the suffix has no digit.
func LodIndex(name, pattern string) int {
	lod, ok := findLod(name, pattern)
	if !ok {
		return 0
	}
	index, err := strconv.Atoi(lod[len(lod)-1:])
	if err != nil {
		return 0
	}
	return index
}

// findLodMatch returns the full substring the user pattern matched.
// Unlike findLod it never descends into the pattern's own capture
// groups; stripping works on the whole suffix even for patterns like
// "_LOD(\d)".
func findLodMatch(name, pattern string) (lod string, ok bool) {
	re, err := compileLodPattern(pattern)
	if err != nil {
		return "", false
	}
	m := re.FindStringSubmatch(name)
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// AssetName normalizes an object name for export: surrounding
// whitespace is trimmed, disallowed characters become underscores and,
// when stripLod is set, the LOD suffix is removed. The result is stable
// under repeated application.
func AssetName(name string, stripLod bool, pattern string) string {
	name = invalidNameChars.ReplaceAllString(strings.TrimSpace(name), "_")
	if stripLod {
		if lod, ok := findLodMatch(name, pattern); ok {
			name = strings.ReplaceAll(name, lod, "")
		}
	}
	return name
}

// MatchLod reports whether name contains the LOD suffix. Unlike the
// other helpers this surfaces a malformed pattern to the caller, which
// the lod-name validation wants to tell the user about.
func MatchLod(name, pattern string) (bool, error) {
	re, err := compileLodPattern(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(name), nil
}

// IsLodOf reports whether objectName names a LOD variant of the asset.
// Names without a LOD suffix are never variants, not even of
// themselves.
func IsLodOf(assetName, objectName string, stripLod bool, pattern string) bool {
	if matched, err := MatchLod(objectName, pattern); err != nil || !matched {
		return false
	}
	return assetName == AssetName(objectName, stripLod, pattern)
}

// IsCollisionOf reports whether objectName names a collision volume of
// the asset: a collision prefix, the escaped asset name, optionally the
// LOD suffix, optionally a numeric suffix. The LOD form is only tried
// when the plain form fails; a malformed LOD pattern silently falls
// back to the plain form alone.
func IsCollisionOf(assetName, objectName, pattern string) bool {
	// The asset name already went through AssetName which trims
	// whitespace, so the candidate gets the same treatment.
	objectName = strings.TrimSpace(objectName)

	basic, err := regexp.Compile(`^` + collisionPrefixPattern + regexp.QuoteMeta(assetName) + `(_\d+)?$`)
	if err != nil {
		return false
	}
	if basic.MatchString(objectName) {
		return true
	}

	cleaned, caseInsensitive := ExtractFlags(pattern)
	flags := ""
	if caseInsensitive {
		flags = `(?i)`
	}
	withLod, err := regexp.Compile(flags + `^` + collisionPrefixPattern + regexp.QuoteMeta(assetName) + cleaned + `(_\d+)?$`)
	if err != nil {
		return false
	}
	return withLod.MatchString(objectName)
}

// HasCollisionPrefix reports whether name starts with one of the
// collision volume prefixes.
func HasCollisionPrefix(name string) bool {
	return collisionPrefixRegexp.MatchString(name)
}

// HasInvalidChars reports whether name contains characters unreal will
// reject.
func HasInvalidChars(name string) bool {
	return invalidNameChars.MatchString(name)
}

// IsReserved reports whether name is a token unreal refuses outright.
func IsReserved(name string) bool {
	return strings.ToLower(name) == "none"
}

// AssetID derives a stable id for an exported file path.
func AssetID(filePath string) string {
	return base64.StdEncoding.EncodeToString([]byte(filePath))
}

// AssetNameFromFile returns the asset name encoded in a file path,
// which is its base name without the extension.
func AssetNameFromFile(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
