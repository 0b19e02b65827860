package routesplit

import "fmt"

// Partition is the slice of records destined for one session.
type Partition struct {
	Session SessionID
	Records []Record
}

// Split applies an assignment to the full record set, producing one Partition
// per session of the assignment, in session-list order. Records keep their
// original relative order. A session that received nothing gets an empty,
// non-nil slice.
func Split(records []Record, keyFn KeyFunc, assignment Assignment) ([]Partition, error) {
	sessions := assignment.Sessions()
	pos := make(map[SessionID]int, len(sessions))
	parts := make([]Partition, len(sessions))
	for i, s := range sessions {
		pos[s] = i
		parts[i] = Partition{Session: s, Records: []Record{}}
	}

	for _, r := range records {
		key := keyFn(r)
		s, ok := assignment.SessionOf(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnassignedGroup, key)
		}
		i, ok := pos[s]
		if !ok {
			return nil, fmt.Errorf("%w: %s assigned to unknown session %q", ErrUnassignedGroup, key, s)
		}
		parts[i].Records = append(parts[i].Records, r)
	}

	return parts, nil
}
