package task

import "math"

// MaxID is the largest id a task can hold. math.MaxInt is kept free so the
// id following any stored task is representable.
const MaxID = math.MaxInt - 1

// NextID returns the id following the last task of the sequence, or 0 when
// the sequence is empty. It relies on the sequence being in ascending id
// order; the store combines it with the persisted high-water mark.
func NextID(tasks []Task) int {
	if len(tasks) == 0 {
		return 0
	}
	return tasks[len(tasks)-1].ID + 1
}

// FindByID binary-searches tasks, which must be sorted by ascending id, and
// returns the index of the task with the given id.
func FindByID(tasks []Task, id int) (int, bool) {
	low, high := 0, len(tasks)-1
	for low <= high {
		mid := int(uint(low+high) >> 1)
		switch current := tasks[mid].ID; {
		case current == id:
			return mid, true
		case current < id:
			low = mid + 1
		default:
			high = mid - 1
		}
	}
	return -1, false
}

// checkOrder verifies the ordering invariant FindByID and NextID depend on.
func checkOrder(tasks []Task) error {
	for i, t := range tasks {
		if t.ID < 0 || t.ID > MaxID {
			return corrupt("task at index %d has out of range id %d", i, t.ID)
		}
		if !t.Status.Valid() {
			return corrupt("task %d has invalid status %q", t.ID, t.Status)
		}
		if i > 0 && tasks[i-1].ID >= t.ID {
			return corrupt("task ids not strictly ascending at index %d (%d after %d)", i, t.ID, tasks[i-1].ID)
		}
	}
	return nil
}
