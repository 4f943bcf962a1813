package calendar

import (
	"strings"

	"github.com/google/uuid"

	"gamecal/internal/game"
)

// DeterministicUID derives a name-based (SHA-1, version 5) UUID from the
// entry name, release date and platform short names. The same release always
// yields the same identifier across runs.
func DeterministicUID(e Entry) string {
	shorts := make([]string, 0, len(e.Platforms))
	for _, p := range e.Platforms {
		shorts = append(shorts, p.ShortName)
	}
	key := e.Name + "|" + e.ReleaseDate.UTC().Format(game.DateLayout) + "|" + strings.Join(shorts, ",")
	return uuid.NewSHA1(uuid.Nil, []byte(key)).String()
}
