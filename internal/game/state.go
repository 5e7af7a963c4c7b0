package game

// legalEdges lists every permitted state change. Restart (any state to
// Setup) is included for every state.
var legalEdges = map[State][]State{
    StateSetup:      {StatePlaying, StateSetup},
    StatePlaying:    {StateGameOver, StateAllCleared, StateSetup},
    StateGameOver:   {StateSetup},
    StateAllCleared: {StateSetup},
}

func canTransition(from, to State) bool {
    for _, s := range legalEdges[from] {
        if s == to {
            return true
        }
    }
    return false
}
