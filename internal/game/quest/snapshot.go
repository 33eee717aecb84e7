package quest

// Snapshot is the serializable form of a tracker's state.
type Snapshot struct {
	Active    []ActiveQuest `json:"active"`
	Completed []string      `json:"completed"`
	Failed    []string      `json:"failed"`
}

// Snapshot copies the tracker state for persistence.
func (t *Tracker) Snapshot() Snapshot {
	s := Snapshot{
		Completed: append([]string(nil), t.completed...),
		Failed:    append([]string(nil), t.failed...),
	}
	for _, q := range t.active {
		copied := ActiveQuest{
			QuestID:    q.QuestID,
			Objectives: append([]ObjectiveProgress(nil), q.Objectives...),
		}
		s.Active = append(s.Active, copied)
	}
	return s
}

// Restore replaces the tracker state from a snapshot. Missing fields in old
// saves restore as empty lists.
//
// Postcondition: The tracker matches the snapshot; previous state is dropped.
func (t *Tracker) Restore(s Snapshot) {
	t.active = nil
	t.completed = append([]string(nil), s.Completed...)
	t.failed = append([]string(nil), s.Failed...)
	for _, q := range s.Active {
		copied := &ActiveQuest{
			QuestID:    q.QuestID,
			Objectives: append([]ObjectiveProgress(nil), q.Objectives...),
		}
		t.active = append(t.active, copied)
	}
}
