package planner

import (
	"sort"
	"time"
)

// IDSet is a set of session ids.
type IDSet map[string]struct{}

// Has reports membership.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in ascending order.
func (s IDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ProtectedIDs returns the sessions carrying at least one invite, accepted or not.
func ProtectedIDs(sessions []Session, invites []Invite) IDSet {
	invited := make(map[string]bool, len(invites))
	for _, invite := range invites {
		invited[invite.SessionID] = true
	}
	protected := make(IDSet)
	for _, session := range sessions {
		if invited[session.ID] {
			protected[session.ID] = struct{}{}
		}
	}
	return protected
}

// PurgeCandidates lists planned sessions inside [monday, monday+6d] that are not protected.
func PurgeCandidates(sessions []Session, monday time.Time, protected IDSet) []string {
	sunday := monday.AddDate(0, 0, 6)
	var ids []string
	for _, session := range sessions {
		if session.Status != SessionPlanned {
			continue
		}
		if session.Date.Before(monday) || session.Date.After(sunday) {
			continue
		}
		if protected.Has(session.ID) {
			continue
		}
		ids = append(ids, session.ID)
	}
	return ids
}

func withoutIDs(sessions []Session, ids []string) []Session {
	if len(ids) == 0 {
		return sessions
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := make([]Session, 0, len(sessions))
	for _, session := range sessions {
		if !drop[session.ID] {
			kept = append(kept, session)
		}
	}
	return kept
}
