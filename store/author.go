package store

import (
	"strings"

	"github.com/cppla/socialdash/models"
)

// AuthorFunc returns the author snapshot to stamp on content for a platform.
type AuthorFunc func(models.Platform) models.Author

// AuthorFor builds the author snapshot of user. The username is the connected
// account's handle when there is one; otherwise twitter gets an @handle taken
// from the email and other platforms show the display name.
func AuthorFor(user models.User) AuthorFunc {
	return func(p models.Platform) models.Author {
		a := models.Author{Name: user.Name, Avatar: user.Avatar, Username: user.Name}
		if acc, ok := user.Account(p); ok && acc.Username != "" {
			a.Username = acc.Username
			return a
		}
		if p == models.PlatformTwitter {
			if handle := handleFromEmail(user.Email); handle != "" {
				a.Username = "@" + handle
			}
		}
		return a
	}
}

func handleFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return strings.TrimSpace(local)
}
