package routesplit

import "fmt"

// Assigner distributes groups over sessions. Groups are given in the order
// they should be placed, normally largest first (see SortGroups).
//
// Implementations must be deterministic: the same groups and sessions always
// produce the same Assignment.
type Assigner interface {
	Assign(groups []Group, sessions []SessionID) (Assignment, error)
}

// AssignerFunc adapts a plain function to the [Assigner] interface.
type AssignerFunc func(groups []Group, sessions []SessionID) (Assignment, error)

func (f AssignerFunc) Assign(groups []Group, sessions []SessionID) (Assignment, error) {
	return f(groups, sessions)
}

// AssignedGroup pairs a group with the session it was given to.
type AssignedGroup struct {
	Group   Group
	Session SessionID
}

// SessionLoad summarizes what one session received.
type SessionLoad struct {
	Session SessionID
	Groups  int
	Records int
}

// Assignment maps every group to exactly one session.
type Assignment struct {
	// Groups lists the assignments in placement order.
	Groups []AssignedGroup

	sessions []SessionID
	index    map[GroupKey]SessionID
}

// NewAssignment builds an Assignment over sessions from placed groups.
func NewAssignment(sessions []SessionID, placed []AssignedGroup) Assignment {
	a := Assignment{
		Groups:   placed,
		sessions: sessions,
		index:    make(map[GroupKey]SessionID, len(placed)),
	}
	for _, p := range placed {
		a.index[p.Group.Key] = p.Session
	}
	return a
}

// SessionOf returns the session a group key was assigned to.
func (a Assignment) SessionOf(key GroupKey) (SessionID, bool) {
	s, ok := a.index[key]
	return s, ok
}

// Sessions returns the session list the assignment was made over.
func (a Assignment) Sessions() []SessionID { return a.sessions }

// Loads returns per-session group and record totals in session-list order.
func (a Assignment) Loads() []SessionLoad {
	pos := make(map[SessionID]int, len(a.sessions))
	loads := make([]SessionLoad, len(a.sessions))
	for i, s := range a.sessions {
		pos[s] = i
		loads[i].Session = s
	}
	for _, p := range a.Groups {
		i := pos[p.Session]
		loads[i].Groups++
		loads[i].Records += p.Group.Count
	}
	return loads
}

// CheckFeasible verifies an assignment of groups over sessions can give every
// session at least one group.
func CheckFeasible(groups int, sessions []SessionID) error {
	if len(sessions) == 0 {
		return ErrNoSessions
	}
	seen := make(map[SessionID]struct{}, len(sessions))
	for _, s := range sessions {
		if _, ok := seen[s]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateSession, s)
		}
		seen[s] = struct{}{}
	}
	if len(sessions) > groups {
		return &InfeasibleAssignmentError{Sessions: len(sessions), Groups: groups}
	}
	return nil
}

// Zigzag assigns groups by sweeping the session list back and forth: sessions
// 1..N, then N..1, then 1..N again, so each end session takes two consecutive
// groups at a turn. Fed largest-first groups, this spreads the big groups
// across sessions and pairs them with small ones on the way back.
type Zigzag struct{}

var _ Assigner = (*Zigzag)(nil)

// NewZigzag creates the zigzag strategy.
func NewZigzag() *Zigzag {
	return &Zigzag{}
}

// Assign places groups in order along the sweep.
func (z *Zigzag) Assign(groups []Group, sessions []SessionID) (Assignment, error) {
	if err := CheckFeasible(len(groups), sessions); err != nil {
		return Assignment{}, err
	}

	last := len(sessions) - 1
	placed := make([]AssignedGroup, len(groups))
	idx, forward := 0, true
	for i, g := range groups {
		placed[i] = AssignedGroup{Group: g, Session: sessions[idx]}

		switch {
		case forward && idx == last:
			forward = false
		case forward:
			idx++
		case idx == 0:
			forward = true
		default:
			idx--
		}
	}

	return NewAssignment(sessions, placed), nil
}

// LeastLoaded assigns each group to the session with the smallest running
// record total, ties going to the earliest session. Unlike Zigzag it reacts
// to the totals already placed.
type LeastLoaded struct{}

var _ Assigner = (*LeastLoaded)(nil)

// NewLeastLoaded creates the least-loaded strategy.
func NewLeastLoaded() *LeastLoaded {
	return &LeastLoaded{}
}

// Assign places each group on the currently lightest session.
func (l *LeastLoaded) Assign(groups []Group, sessions []SessionID) (Assignment, error) {
	if err := CheckFeasible(len(groups), sessions); err != nil {
		return Assignment{}, err
	}

	totals := make([]int, len(sessions))
	used := make([]bool, len(sessions))
	placed := make([]AssignedGroup, len(groups))
	for i, g := range groups {
		best := 0
		for s := 1; s < len(sessions); s++ {
			// An empty session always wins so that every session gets work,
			// even when a group has a zero count.
			if (used[best] && !used[s]) || (used[best] == used[s] && totals[s] < totals[best]) {
				best = s
			}
		}
		totals[best] += g.Count
		used[best] = true
		placed[i] = AssignedGroup{Group: g, Session: sessions[best]}
	}

	return NewAssignment(sessions, placed), nil
}
