package game

// Picker chooses the target the auto-play driver clicks on a tick.
type Picker interface {
    Pick(targets []Target, cursor int) (id string, ok bool)
}

// SequentialPicker always clicks the target matching the cursor.
type SequentialPicker struct{}

func (SequentialPicker) Pick(targets []Target, cursor int) (string, bool) {
    for _, t := range targets {
        if t.Number == cursor && !t.IsClearing && !t.Mismatched {
            return t.ID, true
        }
    }
    return "", false
}
