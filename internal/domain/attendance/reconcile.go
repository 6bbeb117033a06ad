// internal/domain/attendance/reconcile.go
package attendance

// Plan is the set of storage operations that makes the persisted rows of one
// session match an in-memory sheet. Deletes and Upserts never share a fincode.
type Plan struct {
	SessionID int64
	Deletes   []int64  // fincodes whose row must go
	Upserts   []Record // keyed on (session_id, fincode)
}

// Empty reports whether applying the plan would change nothing.
func (p Plan) Empty() bool {
	return len(p.Deletes) == 0 && len(p.Upserts) == 0
}

// PlanSave computes the plan for entries against the rows currently stored for
// the session. Rows of athletes that are not in entries are left untouched.
func PlanSave(sessionID int64, entries []RosterEntry, existing []Record) Plan {
	stored := make(map[int64]bool, len(existing))
	for _, r := range existing {
		stored[r.Fincode] = true
	}

	plan := Plan{SessionID: sessionID}
	planned := make(map[int64]bool, len(entries))
	for _, e := range entries {
		if planned[e.Fincode] {
			continue
		}
		planned[e.Fincode] = true

		if e.Status.IsSet() {
			plan.Upserts = append(plan.Upserts, Record{
				SessionID: sessionID,
				Fincode:   e.Fincode,
				Status:    e.Status,
			})
			continue
		}
		if stored[e.Fincode] {
			plan.Deletes = append(plan.Deletes, e.Fincode)
		}
	}
	return plan
}
