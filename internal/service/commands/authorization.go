package commands

import "github.com/hnafiah/rekapbot/internal/domain/models"

// Authorize applies the admin gate: anyone may mutate from a private chat,
// but in a group only senders flagged as admin may. Reporting and export
// commands never pass through here.
func Authorize(auth models.AuthContext) bool {
	if !auth.IsGroup {
		return true
	}
	for _, member := range auth.Members {
		if member.ID == auth.SenderID && member.IsAdmin {
			return true
		}
	}
	return false
}
