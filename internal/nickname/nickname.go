// Package nickname derives memorable names for history entries.
//
// A nickname is adjective-noun-verb-id4, where id4 is the first four
// characters of the entry id. The same id always yields the same nickname,
// e.g. swift-eagle-flies-3fa2.
package nickname

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
)

// Word lists for generating memorable names
var (
	adjectives = []string{
		"swift", "brave", "bold", "clever", "mighty", "gentle", "wise", "noble",
		"fierce", "calm", "bright", "dark", "ancient", "young", "strong", "quick",
		"silent", "loud", "warm", "cool", "sharp", "smooth", "rough", "soft",
		"golden", "silver", "crystal", "iron", "misty", "vivid", "pale", "wild",
	}

	nouns = []string{
		"eagle", "mountain", "river", "falcon", "wolf", "bear", "storm", "thunder",
		"forest", "ocean", "phoenix", "dragon", "tiger", "lion", "hawk", "raven",
		"fox", "deer", "star", "moon", "comet", "valley", "meadow", "lake",
		"island", "castle", "bridge", "ember", "wave", "oak", "pine", "pearl",
	}

	verbs = []string{
		"flies", "runs", "leaps", "soars", "dives", "climbs", "swims", "hunts",
		"rests", "guards", "watches", "seeks", "finds", "builds", "grows", "shines",
		"glows", "rises", "falls", "turns", "flows", "burns", "heals", "explores",
		"returns", "whispers", "sings", "roars", "echoes", "reflects", "travels", "waits",
	}
)

const suffixLen = 4

// For returns the nickname of an entry id.
func For(id string) string {
	r := rand.New(rand.NewSource(seed(id)))

	adj := adjectives[r.Intn(len(adjectives))]
	noun := nouns[r.Intn(len(nouns))]
	verb := verbs[r.Intn(len(verbs))]

	suffix := id
	if len(suffix) > suffixLen {
		suffix = suffix[:suffixLen]
	}
	return fmt.Sprintf("%s-%s-%s-%s", adj, noun, verb, suffix)
}

// seed uses the id's leading bytes when it is hex, and an FNV digest of it
// otherwise.
func seed(id string) int64 {
	if b, err := hex.DecodeString(id); err == nil && len(b) >= 8 {
		return int64(binary.LittleEndian.Uint64(b[:8]))
	}
	h := fnv.New64a()
	h.Write([]byte(id))
	return int64(h.Sum64())
}

// Valid checks if name has the nickname shape.
func Valid(name string) bool {
	parts := strings.Split(name, "-")
	return len(parts) == 4 && parts[3] != ""
}

// Suffix returns the id prefix carried by a nickname.
func Suffix(name string) (string, bool) {
	if !Valid(name) {
		return "", false
	}
	parts := strings.Split(name, "-")
	return parts[3], true
}

// Matches reports whether name is the nickname of id.
func Matches(name, id string) bool {
	suffix, ok := Suffix(name)
	if !ok || !strings.HasPrefix(id, suffix) {
		return false
	}
	return For(id) == name
}
